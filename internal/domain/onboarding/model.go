package onboarding

import "time"

// Progress tracks one member's walk through the post-signup setup flow.
// CurrentStep never decreases and CompletedAt is written at most once.
type Progress struct {
	UserID         string
	CurrentStep    int
	CompletedSteps []int
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FinalStep is the last data-capture screen of the flow.
const FinalStep = 5

func NewProgress(userID string, now time.Time) Progress {
	return Progress{
		UserID:      userID,
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p Progress) IsCompleted() bool {
	return p.CompletedAt != nil
}

func (p Progress) HasCompletedStep(step int) bool {
	for _, done := range p.CompletedSteps {
		if done == step {
			return true
		}
	}
	return false
}

// MarkStepCompleted records the step and advances CurrentStep, idempotently:
// replaying a step neither double-counts it nor regresses the cursor.
func (p Progress) MarkStepCompleted(step int, now time.Time) Progress {
	out := p
	out.CompletedSteps = append([]int(nil), p.CompletedSteps...)

	if !out.HasCompletedStep(step) {
		out.CompletedSteps = append(out.CompletedSteps, step)
	}
	if next := step + 1; next > out.CurrentStep {
		out.CurrentStep = next
	}
	if out.CompletedAt == nil && out.hasAllRequiredSteps() {
		completedAt := now
		out.CompletedAt = &completedAt
	}
	out.UpdatedAt = now
	return out
}

func (p Progress) hasAllRequiredSteps() bool {
	for step := 1; step <= FinalStep; step++ {
		if !p.HasCompletedStep(step) {
			return false
		}
	}
	return true
}
