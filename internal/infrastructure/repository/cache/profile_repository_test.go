package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/memory"
	basecache "github.com/amberhearts/amberhearts/internal/platform/cache"
)

type countingProfileRepo struct {
	profile.Repository
	gets atomic.Int64
}

func (c *countingProfileRepo) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	c.gets.Add(1)
	return c.Repository.GetByUserID(ctx, userID)
}

func TestProfileRepository_GetByUserID_ReadThrough(t *testing.T) {
	t.Parallel()

	backing := &countingProfileRepo{Repository: memory.NewProfileRepository()}
	repo := NewProfileRepository(backing, basecache.NewStore(time.Minute))

	seeded := profile.Defaults("user-1", "amira@example.com", "Amira", "email")
	if _, _, err := repo.CreateIfAbsent(context.Background(), seeded); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	for i := 0; i < 3; i++ {
		member, exists, err := repo.GetByUserID(context.Background(), "user-1")
		if err != nil || !exists {
			t.Fatalf("get profile: exists=%t err=%v", exists, err)
		}
		if member.DisplayName != "Amira" {
			t.Fatalf("unexpected display name: %s", member.DisplayName)
		}
	}

	if got := backing.gets.Load(); got != 1 {
		t.Fatalf("expected one backing read, got %d", got)
	}
}

func TestProfileRepository_UpdateInvalidatesCache(t *testing.T) {
	t.Parallel()

	backing := &countingProfileRepo{Repository: memory.NewProfileRepository()}
	repo := NewProfileRepository(backing, basecache.NewStore(time.Minute))

	seeded := profile.Defaults("user-2", "dara@example.com", "Dara", "email")
	if _, _, err := repo.CreateIfAbsent(context.Background(), seeded); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	member, _, err := repo.GetByUserID(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	member.Bio = "Updated bio."
	if err := repo.Update(context.Background(), member); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	reloaded, _, err := repo.GetByUserID(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if reloaded.Bio != "Updated bio." {
		t.Fatalf("cache served a stale profile: %q", reloaded.Bio)
	}
}

func TestProfileRepository_MissesAreCachedToo(t *testing.T) {
	t.Parallel()

	backing := &countingProfileRepo{Repository: memory.NewProfileRepository()}
	repo := NewProfileRepository(backing, basecache.NewStore(time.Minute))

	for i := 0; i < 2; i++ {
		if _, exists, err := repo.GetByUserID(context.Background(), "user-ghost"); err != nil || exists {
			t.Fatalf("unexpected result: exists=%t err=%v", exists, err)
		}
	}
	if got := backing.gets.Load(); got != 1 {
		t.Fatalf("expected one backing read for repeated misses, got %d", got)
	}
}
