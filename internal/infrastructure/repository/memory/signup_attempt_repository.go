package memory

import (
	"context"
	"sync"

	"github.com/amberhearts/amberhearts/internal/domain/signup"
)

type SignupAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]signup.Attempt
}

func NewSignupAttemptRepository() *SignupAttemptRepository {
	return &SignupAttemptRepository{attempts: make(map[string]signup.Attempt)}
}

func (r *SignupAttemptRepository) UpsertAttempt(_ context.Context, attempt signup.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts[attempt.ID] = attempt
	return nil
}

// Attempts returns a snapshot for tests and local inspection.
func (r *SignupAttemptRepository) Attempts() []signup.Attempt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]signup.Attempt, 0, len(r.attempts))
	for _, attempt := range r.attempts {
		out = append(out, attempt)
	}
	return out
}
