package signup

import "context"

type Repository interface {
	UpsertAttempt(ctx context.Context, attempt Attempt) error
}
