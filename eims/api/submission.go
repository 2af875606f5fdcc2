package api

import (
	"context"
	"time"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/model"
)

// Response is the raw outcome of one submission call. Non-2xx statuses are
// data here, not errors; interpretation belongs to the status tracker.
type Response struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// SubmissionService performs the single authenticated, mutually-TLS-secured
// POST carrying a signed payload. It never retries: a request that may have
// partially succeeded server-side must not be repeated blindly, duplicate
// registration is worse than a reported failure.
type SubmissionService interface {
	Submit(ctx context.Context, payload *model.Payload, token string) (*Response, error)
}

type submissionService struct {
	client Client
	cfg    eims.Config
}

func NewSubmissionService(client Client, cfg eims.Config) SubmissionService {
	return &submissionService{client: client, cfg: cfg.WithDefaults()}
}

func (s *submissionService) Submit(ctx context.Context, payload *model.Payload, token string) (*Response, error) {
	if !payload.Signed() {
		return nil, eims.ErrUnsignedPayload
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	resp, err := s.client.PostJSONAuth(ctx, s.cfg.SubmitURL, token, payload)
	if err != nil {
		logger.WithError(err).Warn("submission request failed")
		return nil, err
	}

	logger.WithFields(map[string]any{
		"status":  resp.StatusCode(),
		"elapsed": resp.Time(),
	}).Info("submission response received")

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Elapsed:    resp.Time(),
	}, nil
}
