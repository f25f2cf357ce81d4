package onboarding

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Progress, bool, error)
	Upsert(ctx context.Context, progress Progress) error
}
