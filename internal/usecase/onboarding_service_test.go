package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/memory"
	onboardingmock "github.com/amberhearts/amberhearts/internal/mocks/domain/onboarding"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

func newOnboardingFixture() (*OnboardingService, *memory.ProfileRepository, *memory.OnboardingRepository) {
	profileRepo := memory.NewProfileRepository()
	progressRepo := memory.NewOnboardingRepository()
	profileSvc := NewProfileService(profileRepo)
	svc := NewOnboardingService(progressRepo, profileSvc, logging.NewNop())
	return svc, profileRepo, progressRepo
}

func seedProfile(t *testing.T, repo *memory.ProfileRepository, member profile.Profile) {
	t.Helper()
	if _, _, err := repo.CreateIfAbsent(context.Background(), member); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func TestOnboardingService_GetStatus_NewMemberStartsAtStepOne(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _ := newOnboardingFixture()
	seedProfile(t, profileRepo, profile.Defaults("user-1", "amira@example.com", "Amira", "email"))

	status, err := svc.GetStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !status.NeedsOnboarding {
		t.Fatalf("new member must need onboarding")
	}
	if status.CurrentStep != 1 {
		t.Fatalf("unexpected current step: %d", status.CurrentStep)
	}
	if status.CompletedAt != nil {
		t.Fatalf("unexpected completed_at for new member")
	}
}

func TestOnboardingService_GetStatus_MissingProfileIsNotAnError(t *testing.T) {
	t.Parallel()

	svc, _, _ := newOnboardingFixture()

	status, err := svc.GetStatus(context.Background(), "user-ghost")
	if err != nil {
		t.Fatalf("get status without profile: %v", err)
	}
	if status.CompletionPercent != 0 {
		t.Fatalf("unexpected completion percent: %d", status.CompletionPercent)
	}
}

func TestOnboardingService_GetStatus_CompletionGateShortCircuitsSteps(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _ := newOnboardingFixture()
	member := profile.Defaults("user-2", "dara@example.com", "Dara", "email")
	member.Bio = "Tea enthusiast."
	member.Interests = []string{"tea", "hiking"}
	member.City = "Jakarta"
	member.Country = "Indonesia"
	member.DateOfBirth = "1994-03-12"
	member.RelationshipGoal = profile.GoalLongTerm
	member.CompletionPercent = profile.CompletionPercent(member)
	seedProfile(t, profileRepo, member)

	status, err := svc.GetStatus(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !status.ProfileReady {
		t.Fatalf("profile at %d%% must be dashboard-ready", status.CompletionPercent)
	}
	if status.NeedsOnboarding {
		t.Fatalf("a dashboard-ready member must not be routed to onboarding")
	}
	if status.CurrentStep != 1 {
		t.Fatalf("step cursor must stay inspectable, got %d", status.CurrentStep)
	}
}

func TestOnboardingService_AdvanceStep_MergesProfileFields(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _ := newOnboardingFixture()
	seedProfile(t, profileRepo, profile.Defaults("user-3", "nia@example.com", "Nia", "email"))

	bio := "Street food cartographer."
	result, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{
		UserID: "user-3",
		Step:   2,
		ProfileFields: profile.FieldPatch{
			Bio:       &bio,
			Interests: []string{"food", "maps"},
		},
	})
	if err != nil {
		t.Fatalf("advance step: %v", err)
	}
	if result.NextStep != 3 {
		t.Fatalf("unexpected next step: %d", result.NextStep)
	}
	if result.Completed {
		t.Fatalf("flow must not complete after one step")
	}
	if result.CompletionPercent == 0 {
		t.Fatalf("expected merged fields to raise the completion percent")
	}

	member, _, err := profileRepo.GetByUserID(context.Background(), "user-3")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if member.Bio != bio {
		t.Fatalf("bio not merged: %q", member.Bio)
	}
}

func TestOnboardingService_AdvanceStep_CompletesOnceAllStepsDone(t *testing.T) {
	t.Parallel()

	svc, profileRepo, progressRepo := newOnboardingFixture()
	seedProfile(t, profileRepo, profile.Defaults("user-4", "tariq@example.com", "Tariq", "email"))

	for step := 1; step <= onboarding.FinalStep; step++ {
		result, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{UserID: "user-4", Step: step})
		if err != nil {
			t.Fatalf("advance step %d: %v", step, err)
		}
		if step < onboarding.FinalStep && result.Completed {
			t.Fatalf("flow completed early at step %d", step)
		}
		if step == onboarding.FinalStep && !result.Completed {
			t.Fatalf("flow must complete after step %d", step)
		}
	}

	progress, exists, err := progressRepo.GetByUserID(context.Background(), "user-4")
	if err != nil || !exists {
		t.Fatalf("progress missing: exists=%t err=%v", exists, err)
	}
	if progress.CompletedAt == nil {
		t.Fatalf("completed_at must be set")
	}

	completedAt := *progress.CompletedAt

	// Replaying the final step must not move the completion timestamp.
	time.Sleep(time.Millisecond)
	if _, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{UserID: "user-4", Step: onboarding.FinalStep}); err != nil {
		t.Fatalf("replay final step: %v", err)
	}
	progress, _, err = progressRepo.GetByUserID(context.Background(), "user-4")
	if err != nil {
		t.Fatalf("reload progress: %v", err)
	}
	if progress.CompletedAt == nil || !progress.CompletedAt.Equal(completedAt) {
		t.Fatalf("completed_at moved on replay: %v -> %v", completedAt, progress.CompletedAt)
	}
}

func TestOnboardingService_AdvanceStep_RejectsOutOfRangeStep(t *testing.T) {
	t.Parallel()

	svc, _, _ := newOnboardingFixture()

	if _, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{UserID: "user-5", Step: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for step 0, got %v", err)
	}
	if _, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{UserID: "user-5", Step: onboarding.FinalStep + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for step %d, got %v", onboarding.FinalStep+1, err)
	}
}

func TestOnboardingService_AdvanceStep_ProfileMergeFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	svc, _, progressRepo := newOnboardingFixture()

	// No profile exists, so the merge fails with not-found; sequencing must
	// still advance.
	bio := "placeholder"
	result, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{
		UserID:        "user-6",
		Step:          1,
		ProfileFields: profile.FieldPatch{Bio: &bio},
	})
	if err != nil {
		t.Fatalf("advance step: %v", err)
	}
	if result.NextStep != 2 {
		t.Fatalf("unexpected next step: %d", result.NextStep)
	}

	if _, exists, _ := progressRepo.GetByUserID(context.Background(), "user-6"); !exists {
		t.Fatalf("progress must be persisted despite the failed merge")
	}
}

func TestOnboardingService_GetStatus_ProgressRepoErrorBubblesUsingMockery(t *testing.T) {
	t.Parallel()

	progressRepo := onboardingmock.NewRepository(t)
	progressRepo.On("GetByUserID", mock.Anything, "user-7").
		Return(onboarding.Progress{}, false, errors.New("connection reset"))

	svc := NewOnboardingService(progressRepo, NewProfileService(memory.NewProfileRepository()), logging.NewNop())

	if _, err := svc.GetStatus(context.Background(), "user-7"); err == nil {
		t.Fatal("expected error from progress repository")
	}
}

func TestOnboardingService_AdvanceStep_UpsertErrorBubblesUsingMockery(t *testing.T) {
	t.Parallel()

	progressRepo := onboardingmock.NewRepository(t)
	progressRepo.On("GetByUserID", mock.Anything, "user-8").
		Return(onboarding.Progress{}, false, nil)
	progressRepo.On("Upsert", mock.Anything, mock.AnythingOfType("onboarding.Progress")).
		Return(errors.New("write timeout"))

	svc := NewOnboardingService(progressRepo, NewProfileService(memory.NewProfileRepository()), logging.NewNop())

	_, err := svc.AdvanceStep(context.Background(), AdvanceStepInput{UserID: "user-8", Step: 1})
	if err == nil {
		t.Fatal("expected error from progress upsert")
	}
}
