package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

// ProfileRepository keeps profiles in process memory. Used for local
// development and tests when no database is configured.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]profile.Profile)}
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.profiles[strings.TrimSpace(userID)]
	if !ok {
		return profile.Profile{}, false, nil
	}
	return cloneProfile(member), true, nil
}

func (r *ProfileRepository) CreateIfAbsent(_ context.Context, member profile.Profile) (profile.Profile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := strings.TrimSpace(member.UserID)
	if existing, ok := r.profiles[userID]; ok {
		return cloneProfile(existing), false, nil
	}

	member.UserID = userID
	r.profiles[userID] = cloneProfile(member)
	return cloneProfile(member), true, nil
}

func (r *ProfileRepository) Update(_ context.Context, member profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[strings.TrimSpace(member.UserID)] = cloneProfile(member)
	return nil
}

func (r *ProfileRepository) ListUserIDs(_ context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := make([]string, 0, len(r.profiles))
	for userID := range r.profiles {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	if limit > 0 && len(userIDs) > limit {
		userIDs = userIDs[:limit]
	}
	return userIDs, nil
}

func cloneProfile(member profile.Profile) profile.Profile {
	clone := member
	clone.Interests = append([]string(nil), member.Interests...)
	clone.CulturalBackgrounds = append([]string(nil), member.CulturalBackgrounds...)
	return clone
}
