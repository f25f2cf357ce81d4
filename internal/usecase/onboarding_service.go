package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

type OnboardingStatus struct {
	NeedsOnboarding   bool
	CurrentStep       int
	CompletedSteps    []int
	CompletedAt       *time.Time
	CompletionPercent int
	ProfileReady      bool
}

type AdvanceStepInput struct {
	UserID        string
	Step          int
	ProfileFields profile.FieldPatch
}

type AdvanceStepResult struct {
	NextStep          int
	Completed         bool
	CompletionPercent int
	ProfileReady      bool
}

type OnboardingService struct {
	progressRepo   onboarding.Repository
	profileService *ProfileService
	logger         *logging.Logger
	now            func() time.Time
}

func NewOnboardingService(
	progressRepo onboarding.Repository,
	profileService *ProfileService,
	logger *logging.Logger,
) *OnboardingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &OnboardingService{
		progressRepo:   progressRepo,
		profileService: profileService,
		logger:         logger,
		now:            time.Now,
	}
}

// GetStatus is read-only. A member with no progress record needs onboarding
// and starts at step 1; that is the contract, not an error.
func (s *OnboardingService) GetStatus(ctx context.Context, userID string) (OnboardingStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OnboardingService.GetStatus")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return OnboardingStatus{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	status := OnboardingStatus{
		NeedsOnboarding: true,
		CurrentStep:     1,
	}

	progress, exists, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return OnboardingStatus{}, fmt.Errorf("get onboarding progress: %w", err)
	}
	if exists {
		status.CurrentStep = progress.CurrentStep
		status.CompletedSteps = progress.CompletedSteps
		status.CompletedAt = progress.CompletedAt
		status.NeedsOnboarding = !progress.IsCompleted()
	}

	// Completion percentage is the routing gate: a profile past the threshold
	// goes to the dashboard even with onboarding steps still open. The step
	// cursor above stays untouched so both signals remain inspectable.
	member, err := s.profileService.Get(ctx, userID)
	switch {
	case err == nil:
		status.CompletionPercent = member.CompletionPercent
		status.ProfileReady = profile.ReadyForDashboard(member)
		if status.ProfileReady {
			status.NeedsOnboarding = false
		}
	case isNotFound(err):
		// Profile bootstrap may still be in flight; zero percent stands.
	default:
		return OnboardingStatus{}, fmt.Errorf("get profile for status: %w", err)
	}

	return status, nil
}

// AdvanceStep marks the step complete and merges the captured fields into the
// member's profile. Step sequencing is authoritative; the profile merge is
// best-effort enrichment and must never block the flow.
func (s *OnboardingService) AdvanceStep(ctx context.Context, input AdvanceStepInput) (AdvanceStepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OnboardingService.AdvanceStep")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return AdvanceStepResult{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.Step < 1 || input.Step > onboarding.FinalStep {
		return AdvanceStepResult{}, fmt.Errorf("%w: step must be between 1 and %d", ErrInvalidInput, onboarding.FinalStep)
	}

	now := s.now().UTC()
	progress, exists, err := s.progressRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return AdvanceStepResult{}, fmt.Errorf("get onboarding progress: %w", err)
	}
	if !exists {
		progress = onboarding.NewProgress(input.UserID, now)
	}

	progress = progress.MarkStepCompleted(input.Step, now)
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return AdvanceStepResult{}, fmt.Errorf("upsert onboarding progress: %w", err)
	}

	result := AdvanceStepResult{
		NextStep:  progress.CurrentStep,
		Completed: progress.IsCompleted(),
	}

	if !input.ProfileFields.IsEmpty() {
		updated, mergeErr := s.profileService.UpdateFields(ctx, input.UserID, input.ProfileFields)
		if mergeErr != nil {
			// A stale profile beats a blocked onboarding flow.
			s.logger.WarnContext(ctx, "onboarding profile merge failed",
				"user_id", input.UserID,
				"step", input.Step,
				"error", mergeErr,
			)
		} else {
			result.CompletionPercent = updated.CompletionPercent
			result.ProfileReady = profile.ReadyForDashboard(updated)
		}
	}

	return result, nil
}
