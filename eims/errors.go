package eims

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks a 401 from any EIMS endpoint.
	ErrUnauthorized = errors.New("eims unauthorized")
	ErrForbidden    = errors.New("eims forbidden")
	// ErrUnsignedPayload guards the invariant that a payload is never put on
	// the wire without a signature.
	ErrUnsignedPayload = errors.New("payload has no signature")
	// ErrSentIsTerminal is returned by callers enforcing the status contract:
	// a document that already has an IRN must never be resubmitted.
	ErrSentIsTerminal = errors.New("document already registered, Sent status is terminal")
)

// ValidationError reports invoice data that can never pass EIMS validation.
// Raised before any network call, fatal for the attempt.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid invoice data: %s", e.Message)
	}
	return fmt.Sprintf("invalid invoice data: %s: %s", e.Field, e.Message)
}

// SigningError reports unloadable or mismatched key material. Operator
// intervention is required, a retry can never succeed.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// AuthError reports a rejected or malformed login exchange.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("eims login failed with http status %d: %s", e.Status, e.Body)
}
