package model

import (
	"fmt"
	"time"
)

// Status is the externally visible submission state persisted by the caller.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// AllowTransition encodes the monotonic status contract: Sent is terminal,
// Pending may resolve either way and a failed document may be retried.
func AllowTransition(from, to Status) bool {
	switch from {
	case StatusSent:
		return false
	case "", StatusPending, StatusError:
		return to == StatusPending || to == StatusSent || to == StatusError
	}
	return false
}

// ErrorKind splits failures by retry safety.
type ErrorKind string

const (
	// KindTransient covers 5xx responses, timeouts and connection failures.
	// Safe to retry with backoff.
	KindTransient ErrorKind = "transient"
	// KindPermanent covers 4xx business rejections. Retrying without
	// correcting the payload can only fail again.
	KindPermanent ErrorKind = "permanent"
	// KindCancelled marks a caller-initiated abort. Never retried.
	KindCancelled ErrorKind = "cancelled"
)

// SubmissionResult is the single outcome of one orchestrated submission.
type SubmissionResult struct {
	Status     Status
	IRN        string
	Reason     string
	Kind       ErrorKind
	Message    string
	HTTPStatus int
}

func Sent(irn string) SubmissionResult {
	return SubmissionResult{Status: StatusSent, IRN: irn}
}

func Pending(reason string) SubmissionResult {
	return SubmissionResult{Status: StatusPending, Reason: reason}
}

func Failed(kind ErrorKind, message string, httpStatus int) SubmissionResult {
	return SubmissionResult{Status: StatusError, Kind: kind, Message: message, HTTPStatus: httpStatus}
}

func (r SubmissionResult) String() string {
	switch r.Status {
	case StatusSent:
		return fmt.Sprintf("sent (irn=%s)", r.IRN)
	case StatusPending:
		return fmt.Sprintf("pending (%s)", r.Reason)
	default:
		return fmt.Sprintf("error (%s, http=%d): %s", r.Kind, r.HTTPStatus, r.Message)
	}
}

// Credential is a bearer token with its validity window. A zero ExpiresAt
// means the remote did not report one.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

func (c Credential) Valid(now time.Time, skew time.Duration) bool {
	if c.Token == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.Sub(now.UTC()) > skew
}
