package httpapi

import (
	"log/slog"
	"net/http"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

// Signup routes are public by nature; the bot check and the shared rate
// counter stand in for authentication there.
func registerPublicRoutes(mux *http.ServeMux, handler *Handler, counter RateCounter, maxPerWindow int64, logger *slog.Logger) {
	mux.Handle("POST /v1/signup", RateLimit(counter, maxPerWindow, logger, http.HandlerFunc(handler.SignUp)))
	mux.Handle("POST /v1/auth/callback", RateLimit(counter, maxPerWindow, logger, http.HandlerFunc(handler.OAuthCallback)))
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/onboarding/status", RequireAuth(verifier, http.HandlerFunc(handler.GetOnboardingStatus)))
	mux.Handle("POST /v1/onboarding/steps", RequireAuth(verifier, http.HandlerFunc(handler.AdvanceOnboardingStep)))
	mux.Handle("GET /v1/profiles/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyProfile)))
	mux.Handle("PATCH /v1/profiles/me", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMyProfile)))
	mux.Handle("GET /v1/compatibility/{targetID}", RequireAuth(verifier, http.HandlerFunc(handler.GetCompatibility)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/signup-welcome", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSignupWelcomeJob)))
	mux.Handle("POST /v1/internal/jobs/signup-nudge", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSignupNudgeJob)))
	mux.Handle("POST /v1/internal/jobs/completion-backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCompletionBackfillJob)))
}
