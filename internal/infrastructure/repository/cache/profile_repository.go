package cache

import (
	"context"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	basecache "github.com/amberhearts/amberhearts/internal/platform/cache"
)

// ProfileRepository is a read-through decorator for hot profile reads;
// compatibility scoring loads the same pair of rows over and over. Writes
// pass through and drop the cached entry.
type ProfileRepository struct {
	next  profile.Repository
	cache *basecache.Store
}

func NewProfileRepository(next profile.Repository, cache *basecache.Store) *ProfileRepository {
	return &ProfileRepository{next: next, cache: cache}
}

type cachedProfile struct {
	value  profile.Profile
	exists bool
}

func profileKey(userID string) string {
	return "profile:user:" + userID
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, profileKey(userID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return cachedProfile{value: item, exists: exists}, nil
	})
	if err != nil {
		return profile.Profile{}, false, err
	}

	cached, _ := v.(cachedProfile)
	return cached.value, cached.exists, nil
}

func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, p profile.Profile) (profile.Profile, bool, error) {
	stored, created, err := r.next.CreateIfAbsent(ctx, p)
	if err != nil {
		return profile.Profile{}, false, err
	}
	r.cache.Delete(ctx, profileKey(stored.UserID))
	return stored, created, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p profile.Profile) error {
	if err := r.next.Update(ctx, p); err != nil {
		return err
	}
	r.cache.Delete(ctx, profileKey(p.UserID))
	return nil
}

// ListUserIDs is an admin-path scan; caching it would only serve stale
// backfills.
func (r *ProfileRepository) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	return r.next.ListUserIDs(ctx, limit)
}
