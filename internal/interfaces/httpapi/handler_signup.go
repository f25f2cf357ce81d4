package httpapi

import (
	"net/http"

	"github.com/amberhearts/amberhearts/internal/usecase"
)

type signupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	DisplayName  string `json:"display_name" validate:"max=100"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type oauthCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

type signupResponseDTO struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	ProfileCreated bool   `json:"profile_created"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignUp")
	defer span.End()

	var req signupRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.signupService.SignUp(ctx, usecase.SignUpInput{
		Email:        req.Email,
		Password:     req.Password,
		DisplayName:  req.DisplayName,
		CaptchaToken: req.CaptchaToken,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "signup failed", "email", req.Email, "client_ip", resolveClientIP(ctx, r), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, signupResponseDTO{
		UserID:         result.UserID,
		Email:          result.Email,
		ProfileCreated: result.ProfileCreated,
	})
}

func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OAuthCallback")
	defer span.End()

	var req oauthCallbackRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.signupService.OAuthCallback(ctx, req.Code)
	if err != nil {
		h.logger.WarnContext(ctx, "oauth callback failed", "client_ip", resolveClientIP(ctx, r), "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.ProfileCreated {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, signupResponseDTO{
		UserID:         result.UserID,
		Email:          result.Email,
		ProfileCreated: result.ProfileCreated,
	})
}
