// Package audit keeps the per-attempt submission trail: what was sent, what
// came back, how long it took. Records never contain credentials; the login
// exchange is deliberately not recorded.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State of one recorded attempt.
type State string

const (
	StateSent   State = "sent"
	StateOK     State = "ok"
	StateFailed State = "failed"
)

// Attempt is one submission call cycle. Transient by design: recorders may
// persist it, the pipeline itself never reads it back.
type Attempt struct {
	ID             string
	DocumentNumber string
	AttemptNumber  int
	State          State
	RequestJSON    string
	ResponseJSON   string
	HTTPStatus     int
	Elapsed        time.Duration
	Error          string
	IRN            string
	Timestamp      time.Time
}

// NewAttempt stamps identity and time on a fresh record.
func NewAttempt(documentNumber string, attemptNumber int) Attempt {
	return Attempt{
		ID:             uuid.NewString(),
		DocumentNumber: documentNumber,
		AttemptNumber:  attemptNumber,
		Timestamp:      time.Now().UTC(),
	}
}

// Recorder receives each completed attempt. Implementations must be safe for
// concurrent use; submissions for different invoices may run in parallel.
type Recorder interface {
	Record(a Attempt)
}

// NopRecorder drops everything. The default when the host does not care.
type NopRecorder struct{}

func (NopRecorder) Record(Attempt) {}

// MemoryRecorder collects attempts in memory, mostly for hosts that flush
// the trail to their own storage after each submission, and for tests.
type MemoryRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

// Attempts returns a copy of everything recorded so far.
func (r *MemoryRecorder) Attempts() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// ForDocument filters the trail by document number.
func (r *MemoryRecorder) ForDocument(documentNumber string) []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Attempt
	for _, a := range r.attempts {
		if a.DocumentNumber == documentNumber {
			out = append(out, a)
		}
	}
	return out
}
