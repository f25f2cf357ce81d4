package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

type onboardingStatusDTO struct {
	NeedsOnboarding   bool       `json:"needs_onboarding"`
	CurrentStep       int        `json:"current_step"`
	CompletedSteps    []int      `json:"completed_steps,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CompletionPercent int        `json:"completion_percent"`
	ProfileReady      bool       `json:"profile_ready"`
}

type advanceStepRequest struct {
	Step                int      `json:"step" validate:"required,min=1,max=5"`
	DisplayName         *string  `json:"display_name,omitempty" validate:"omitempty,max=100"`
	DateOfBirth         *string  `json:"date_of_birth,omitempty"`
	Gender              *string  `json:"gender,omitempty" validate:"omitempty,max=30"`
	Bio                 *string  `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Interests           []string `json:"interests,omitempty" validate:"max=30,dive,max=50"`
	City                *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Country             *string  `json:"country,omitempty" validate:"omitempty,max=100"`
	RelationshipGoal    *string  `json:"relationship_goal,omitempty" validate:"omitempty,oneof=marriage long_term friendship"`
	CulturalBackgrounds []string `json:"cultural_backgrounds,omitempty" validate:"max=10,dive,max=50"`
	PhotoURL            *string  `json:"photo_url,omitempty" validate:"omitempty,url"`
}

type advanceStepResponseDTO struct {
	NextStep          int  `json:"next_step"`
	Completed         bool `json:"completed"`
	CompletionPercent int  `json:"completion_percent"`
	ProfileReady      bool `json:"profile_ready"`
}

func (h *Handler) GetOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOnboardingStatus")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	status, err := h.onboardingService.GetStatus(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get onboarding status failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, onboardingStatusDTO{
		NeedsOnboarding:   status.NeedsOnboarding,
		CurrentStep:       status.CurrentStep,
		CompletedSteps:    status.CompletedSteps,
		CompletedAt:       status.CompletedAt,
		CompletionPercent: status.CompletionPercent,
		ProfileReady:      status.ProfileReady,
	})
}

func (h *Handler) AdvanceOnboardingStep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdvanceOnboardingStep")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req advanceStepRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.onboardingService.AdvanceStep(ctx, usecase.AdvanceStepInput{
		UserID:        principal.UserID,
		Step:          req.Step,
		ProfileFields: fieldPatchFromRequest(req),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "advance onboarding step failed", "user_id", principal.UserID, "step", req.Step, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, advanceStepResponseDTO{
		NextStep:          result.NextStep,
		Completed:         result.Completed,
		CompletionPercent: result.CompletionPercent,
		ProfileReady:      result.ProfileReady,
	})
}

func fieldPatchFromRequest(req advanceStepRequest) profile.FieldPatch {
	return profile.FieldPatch{
		DisplayName:         req.DisplayName,
		DateOfBirth:         req.DateOfBirth,
		Gender:              req.Gender,
		Bio:                 req.Bio,
		Interests:           req.Interests,
		City:                req.City,
		Country:             req.Country,
		RelationshipGoal:    req.RelationshipGoal,
		CulturalBackgrounds: req.CulturalBackgrounds,
		PhotoURL:            req.PhotoURL,
	}
}
