package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
)

type OnboardingRepository struct {
	mu       sync.RWMutex
	progress map[string]onboarding.Progress
}

func NewOnboardingRepository() *OnboardingRepository {
	return &OnboardingRepository{progress: make(map[string]onboarding.Progress)}
}

func (r *OnboardingRepository) GetByUserID(_ context.Context, userID string) (onboarding.Progress, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	progress, ok := r.progress[strings.TrimSpace(userID)]
	if !ok {
		return onboarding.Progress{}, false, nil
	}
	return cloneProgress(progress), true, nil
}

func (r *OnboardingRepository) Upsert(_ context.Context, progress onboarding.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress[strings.TrimSpace(progress.UserID)] = cloneProgress(progress)
	return nil
}

func cloneProgress(progress onboarding.Progress) onboarding.Progress {
	clone := progress
	clone.CompletedSteps = append([]int(nil), progress.CompletedSteps...)
	if progress.CompletedAt != nil {
		at := *progress.CompletedAt
		clone.CompletedAt = &at
	}
	return clone
}
