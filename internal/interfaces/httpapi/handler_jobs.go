package httpapi

import (
	"fmt"
	"net/http"

	"github.com/amberhearts/amberhearts/internal/usecase"
)

type welcomeJobRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

type backfillJobRequest struct {
	MaxWorkers int `json:"max_workers" validate:"min=0,max=64"`
	Limit      int `json:"limit" validate:"min=0"`
}

// RunSignupWelcomeJob is the queue-delivered entry point of the post-signup
// sequence. QStash retries on non-2xx, so failures are surfaced, not eaten.
func (h *Handler) RunSignupWelcomeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSignupWelcomeJob")
	defer span.End()

	if h.signupService == nil {
		writeError(ctx, w, fmt.Errorf("%w: signup service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req welcomeJobRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.signupService.RunWelcomeStep(ctx, usecase.WelcomeJobPayload{UserID: req.UserID, Email: req.Email}); err != nil {
		h.logger.WarnContext(ctx, "signup welcome job failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) RunSignupNudgeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSignupNudgeJob")
	defer span.End()

	if h.signupService == nil {
		writeError(ctx, w, fmt.Errorf("%w: signup service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req welcomeJobRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.signupService.RunNudgeStep(ctx, usecase.WelcomeJobPayload{UserID: req.UserID, Email: req.Email}); err != nil {
		h.logger.WarnContext(ctx, "signup nudge job failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) RunCompletionBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCompletionBackfillJob")
	defer span.End()

	if h.backfillService == nil {
		writeError(ctx, w, fmt.Errorf("%w: backfill service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillJobRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.backfillService.Run(ctx, usecase.BackfillInput{
		MaxWorkers: req.MaxWorkers,
		Limit:      req.Limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "completion backfill job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
