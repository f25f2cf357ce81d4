package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/amberhearts/amberhearts/internal/usecase"
)

type Handler struct {
	signupService        *usecase.SignupService
	onboardingService    *usecase.OnboardingService
	profileService       *usecase.ProfileService
	compatibilityService *usecase.CompatibilityService
	backfillService      *usecase.CompletionBackfillService
	logger               *slog.Logger
	validator            *validator.Validate
}

func NewHandler(
	signupService *usecase.SignupService,
	onboardingService *usecase.OnboardingService,
	profileService *usecase.ProfileService,
	compatibilityService *usecase.CompatibilityService,
	backfillService *usecase.CompletionBackfillService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		signupService:        signupService,
		onboardingService:    onboardingService,
		profileService:       profileService,
		compatibilityService: compatibilityService,
		backfillService:      backfillService,
		logger:               logger,
		validator:            validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, out)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
