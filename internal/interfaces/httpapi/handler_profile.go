package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

type profileDTO struct {
	UserID              string    `json:"user_id"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name,omitempty"`
	DateOfBirth         string    `json:"date_of_birth,omitempty"`
	Gender              string    `json:"gender,omitempty"`
	Bio                 string    `json:"bio,omitempty"`
	Interests           []string  `json:"interests,omitempty"`
	City                string    `json:"city,omitempty"`
	Country             string    `json:"country,omitempty"`
	RelationshipGoal    string    `json:"relationship_goal,omitempty"`
	CulturalBackgrounds []string  `json:"cultural_backgrounds,omitempty"`
	PhotoURL            string    `json:"photo_url,omitempty"`
	SubscriptionTier    string    `json:"subscription_tier"`
	EmailVerified       bool      `json:"email_verified"`
	PhotoVerified       bool      `json:"photo_verified"`
	CompletionPercent   int       `json:"completion_percent"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
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

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	member, err := h.profileService.Get(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(member))
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateProfileRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.profileService.UpdateFields(ctx, principal.UserID, profile.FieldPatch{
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
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(updated))
}

func profileToDTO(member profile.Profile) profileDTO {
	return profileDTO{
		UserID:              member.UserID,
		Email:               member.Email,
		DisplayName:         member.DisplayName,
		DateOfBirth:         member.DateOfBirth,
		Gender:              member.Gender,
		Bio:                 member.Bio,
		Interests:           member.Interests,
		City:                member.City,
		Country:             member.Country,
		RelationshipGoal:    string(member.RelationshipGoal),
		CulturalBackgrounds: member.CulturalBackgrounds,
		PhotoURL:            member.PhotoURL,
		SubscriptionTier:    string(member.SubscriptionTier),
		EmailVerified:       member.EmailVerified,
		PhotoVerified:       member.PhotoVerified,
		CompletionPercent:   member.CompletionPercent,
		CreatedAt:           member.CreatedAt,
		UpdatedAt:           member.UpdatedAt,
	}
}
