package postgres

import (
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/signup"
)

type signupAttemptInsertModel struct {
	AttemptID    string    `db:"attempt_id"`
	Email        string    `db:"email"`
	Method       string    `db:"method"`
	State        string    `db:"state"`
	UserID       *string   `db:"user_id"`
	ErrorMessage *string   `db:"error_message"`
	OccurredAt   time.Time `db:"occurred_at"`
}

func signupAttemptToInsertModel(attempt signup.Attempt) signupAttemptInsertModel {
	return signupAttemptInsertModel{
		AttemptID:    attempt.ID,
		Email:        attempt.Email,
		Method:       attempt.Method,
		State:        string(attempt.State),
		UserID:       optionalString(attempt.UserID),
		ErrorMessage: optionalString(attempt.ErrorMessage),
		OccurredAt:   attempt.OccurredAt,
	}
}
