package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/amberhearts/amberhearts/internal/domain/signup"
	qb "github.com/amberhearts/amberhearts/internal/platform/querybuilder"
)

type SignupAttemptRepository struct {
	db *sqlx.DB
}

func NewSignupAttemptRepository(db *sqlx.DB) *SignupAttemptRepository {
	return &SignupAttemptRepository{db: db}
}

// UpsertAttempt keeps the latest state per attempt. One row per attempt id,
// overwritten as the state machine advances.
func (r *SignupAttemptRepository) UpsertAttempt(ctx context.Context, attempt signup.Attempt) error {
	query, args, err := qb.InsertModel("signup_attempts", signupAttemptToInsertModel(attempt),
		`ON CONFLICT (attempt_id)
DO UPDATE SET
    state = EXCLUDED.state,
    user_id = COALESCE(EXCLUDED.user_id, signup_attempts.user_id),
    error_message = EXCLUDED.error_message,
    occurred_at = EXCLUDED.occurred_at`)
	if err != nil {
		return fmt.Errorf("build upsert signup attempt query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert signup attempt: %w", err)
	}

	return nil
}
