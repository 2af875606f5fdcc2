// Package status derives the externally visible SubmissionResult from raw
// EIMS responses and transport failures. Everything here is a pure function
// so the same response always yields the same result.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/api"
	"github.com/addissoft/go-eims-client/eims/model"
)

// submitBody covers the response shapes EIMS has been observed to return:
// the IRN at body.irn, data.irn or top level.
type submitBody struct {
	IRN  string `json:"irn"`
	Body struct {
		IRN    string `json:"irn"`
		QRData string `json:"qrData"`
	} `json:"body"`
	Data struct {
		IRN string `json:"irn"`
	} `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Interpret maps one submission response to its result.
//   - 2xx carrying an IRN: Sent.
//   - 2xx without one (accepted but still processing): Pending.
//   - 2xx with a body that is not JSON: Error. A success status is only
//     trusted when the body can actually be read.
//   - anything else: Error, kind by Classify.
func Interpret(resp *api.Response) model.SubmissionResult {
	var body submitBody
	parseErr := json.Unmarshal(resp.Body, &body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if parseErr != nil {
			message := fmt.Sprintf("malformed response body: %s", resp.Body)
			return model.Failed(Classify(resp.StatusCode), message, resp.StatusCode)
		}
		if irn := firstNonEmpty(body.Body.IRN, body.Data.IRN, body.IRN); irn != "" {
			return model.Sent(irn)
		}
		reason := firstNonEmpty(body.Message, "accepted, awaiting registration")
		return model.Pending(reason)
	}

	message := firstNonEmpty(body.Error, body.Message, string(resp.Body))
	return model.Failed(Classify(resp.StatusCode), message, resp.StatusCode)
}

// Classify splits HTTP statuses by retry safety: 5xx transient, 4xx
// permanent.
func Classify(statusCode int) model.ErrorKind {
	if statusCode >= 500 || statusCode == 0 {
		return model.KindTransient
	}
	return model.KindPermanent
}

// InterpretErr maps a transport-level failure (no HTTP status available).
// Caller-initiated cancellation is distinguished from I/O timeouts: the
// former is never retried.
func InterpretErr(ctx context.Context, err error) model.SubmissionResult {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return model.Failed(model.KindCancelled, fmt.Sprintf("submission aborted: %v", err), 0)
	}

	var authErr *eims.AuthError
	if errors.As(err, &authErr) {
		return model.Failed(Classify(authErr.Status), authErr.Error(), authErr.Status)
	}

	// Per-request timeouts and connection failures are retryable.
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return model.Failed(model.KindTransient, fmt.Sprintf("request timed out: %v", err), 0)
	}

	return model.Failed(model.KindTransient, err.Error(), 0)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
