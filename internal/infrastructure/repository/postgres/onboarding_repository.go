package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
	qb "github.com/amberhearts/amberhearts/internal/platform/querybuilder"
)

type OnboardingRepository struct {
	db *sqlx.DB
}

func NewOnboardingRepository(db *sqlx.DB) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

func (r *OnboardingRepository) GetByUserID(ctx context.Context, userID string) (onboarding.Progress, bool, error) {
	query, args, err := qb.Select("*").
		From("onboarding_progress").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return onboarding.Progress{}, false, fmt.Errorf("build get onboarding progress query: %w", err)
	}

	var row onboardingProgressTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return onboarding.Progress{}, false, nil
		}
		return onboarding.Progress{}, false, fmt.Errorf("get onboarding progress: %w", err)
	}

	return onboardingProgressFromRow(row), true, nil
}

func (r *OnboardingRepository) Upsert(ctx context.Context, progress onboarding.Progress) error {
	query, args, err := qb.InsertModel("onboarding_progress", onboardingProgressToInsertModel(progress),
		`ON CONFLICT (user_id) WHERE deleted_at IS NULL
DO UPDATE SET
    current_step = EXCLUDED.current_step,
    completed_steps = EXCLUDED.completed_steps,
    completed_at = COALESCE(onboarding_progress.completed_at, EXCLUDED.completed_at),
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert onboarding progress query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert onboarding progress: %w", err)
	}

	return nil
}
