package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
)

type onboardingProgressTableModel struct {
	ID             int64         `db:"id"`
	UserID         string        `db:"user_id"`
	CurrentStep    int           `db:"current_step"`
	CompletedSteps pq.Int64Array `db:"completed_steps"`
	CompletedAt    *time.Time    `db:"completed_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
	DeletedAt      *time.Time    `db:"deleted_at"`
}

type onboardingProgressInsertModel struct {
	UserID         string        `db:"user_id"`
	CurrentStep    int           `db:"current_step"`
	CompletedSteps pq.Int64Array `db:"completed_steps"`
	CompletedAt    *time.Time    `db:"completed_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func onboardingProgressFromRow(row onboardingProgressTableModel) onboarding.Progress {
	steps := make([]int, 0, len(row.CompletedSteps))
	for _, step := range row.CompletedSteps {
		steps = append(steps, int(step))
	}

	return onboarding.Progress{
		UserID:         row.UserID,
		CurrentStep:    row.CurrentStep,
		CompletedSteps: steps,
		CompletedAt:    row.CompletedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func onboardingProgressToInsertModel(progress onboarding.Progress) onboardingProgressInsertModel {
	steps := make(pq.Int64Array, 0, len(progress.CompletedSteps))
	for _, step := range progress.CompletedSteps {
		steps = append(steps, int64(step))
	}

	return onboardingProgressInsertModel{
		UserID:         progress.UserID,
		CurrentStep:    progress.CurrentStep,
		CompletedSteps: steps,
		CompletedAt:    progress.CompletedAt,
		UpdatedAt:      progress.UpdatedAt,
	}
}
