package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/amberhearts/amberhearts/internal/domain/matching"
	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

type CompatibilityService struct {
	profileRepo profile.Repository
}

func NewCompatibilityService(profileRepo profile.Repository) *CompatibilityService {
	return &CompatibilityService{profileRepo: profileRepo}
}

// ScorePair loads both profiles and runs the pure scorer over them. The pair
// is ordered: common interests are reported from the viewer's side.
func (s *CompatibilityService) ScorePair(ctx context.Context, viewerID, targetID string) (matching.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompatibilityService.ScorePair")
	defer span.End()

	viewerID = strings.TrimSpace(viewerID)
	targetID = strings.TrimSpace(targetID)
	if viewerID == "" {
		return matching.Result{}, fmt.Errorf("%w: viewer_id is required", ErrInvalidInput)
	}
	if targetID == "" {
		return matching.Result{}, fmt.Errorf("%w: target_id is required", ErrInvalidInput)
	}

	viewer, exists, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return matching.Result{}, fmt.Errorf("get viewer profile: %w", err)
	}
	if !exists {
		return matching.Result{}, fmt.Errorf("%w: profile %s", ErrNotFound, viewerID)
	}

	target, exists, err := s.profileRepo.GetByUserID(ctx, targetID)
	if err != nil {
		return matching.Result{}, fmt.Errorf("get target profile: %w", err)
	}
	if !exists {
		return matching.Result{}, fmt.Errorf("%w: profile %s", ErrNotFound, targetID)
	}

	return matching.Score(viewer, target), nil
}
