package profile

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Profile, bool, error)
	// CreateIfAbsent inserts the profile only when no row exists for its user
	// id and reports whether an insert happened. Existing rows are returned
	// untouched; repeated OAuth callbacks must not reset a filled profile.
	CreateIfAbsent(ctx context.Context, p Profile) (Profile, bool, error)
	Update(ctx context.Context, p Profile) error
	ListUserIDs(ctx context.Context, limit int) ([]string, error)
}
