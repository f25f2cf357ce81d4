package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

type ProfileService struct {
	profileRepo profile.Repository
	now         func() time.Time
}

func NewProfileService(profileRepo profile.Repository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	existing, exists, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}

	return existing, nil
}

// UpdateFields merges a partial update into the stored profile and recomputes
// the completion percentage. Empty patch values never overwrite filled fields.
func (s *ProfileService) UpdateFields(ctx context.Context, userID string, patch profile.FieldPatch) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UpdateFields")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return profile.Profile{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	existing, exists, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}

	updated := profile.ApplyPatch(existing, patch)
	updated.UpdatedAt = s.now().UTC()

	if err := s.profileRepo.Update(ctx, updated); err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}
