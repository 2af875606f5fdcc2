package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"new document to pending", "", StatusPending, true},
		{"pending to sent", StatusPending, StatusSent, true},
		{"pending to error", StatusPending, StatusError, true},
		{"error retried to sent", StatusError, StatusSent, true},
		{"error to error", StatusError, StatusError, true},
		{"sent is terminal", StatusSent, StatusError, false},
		{"sent never downgraded to pending", StatusSent, StatusPending, false},
		{"sent not resent", StatusSent, StatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowTransition(tt.from, tt.to))
		})
	}
}

func TestSubmissionResult_String(t *testing.T) {
	assert.Equal(t, "sent (irn=IRN-XYZ)", Sent("IRN-XYZ").String())
	assert.Contains(t, Pending("queued").String(), "queued")
	assert.Contains(t, Failed(KindPermanent, "invalid TIN", 400).String(), "http=400")
}
