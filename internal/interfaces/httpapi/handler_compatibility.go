package httpapi

import (
	"fmt"
	"net/http"

	"github.com/amberhearts/amberhearts/internal/domain/matching"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

type compatibilityDTO struct {
	Overall         int            `json:"overall"`
	Breakdown       map[string]int `json:"breakdown"`
	CommonInterests []string       `json:"common_interests,omitempty"`
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompatibility")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	targetID := r.PathValue("targetID")
	result, err := h.compatibilityService.ScorePair(ctx, principal.UserID, targetID)
	if err != nil {
		h.logger.WarnContext(ctx, "compatibility score failed", "user_id", principal.UserID, "target_id", targetID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, compatibilityToDTO(result))
}

func compatibilityToDTO(result matching.Result) compatibilityDTO {
	breakdown := make(map[string]int, len(result.Breakdown))
	for dimension, score := range result.Breakdown {
		breakdown[string(dimension)] = score
	}

	return compatibilityDTO{
		Overall:         result.Overall,
		Breakdown:       breakdown,
		CommonInterests: result.CommonInterests,
	}
}
