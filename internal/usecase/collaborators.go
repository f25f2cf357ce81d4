package usecase

import (
	"context"
	"time"
)

// IdentityProvider is the managed auth collaborator. Uniqueness of emails is
// its responsibility; concurrent signups for the same address resolve there.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (IdentityResult, error)
	ExchangeOAuthCode(ctx context.Context, code string) (IdentityResult, error)
}

type IdentityResult struct {
	UserID        string
	Email         string
	DisplayName   string
	AvatarURL     string
	Provider      string
	EmailVerified bool
}

// BotVerifier validates a human-verification token server-side before any
// identity call is allowed.
type BotVerifier interface {
	Verify(ctx context.Context, token string) (BotVerdict, error)
}

// BotVerdict carries the challenge outcome. HasScore reports whether the
// provider returned a risk score at all; standard Turnstile plans omit it,
// and an absent score must not read as zero.
type BotVerdict struct {
	Success  bool
	Score    float64
	HasScore bool
}

// NotificationSender delivers a templated notification. Fire-and-forget:
// callers log failures and move on.
type NotificationSender interface {
	Send(ctx context.Context, userID, email string, template NotificationTemplate) error
}

type NotificationTemplate string

const (
	TemplateWelcome         NotificationTemplate = "welcome"
	TemplateOnboardingNudge NotificationTemplate = "onboarding_nudge"
)

// JobQueue schedules durable delayed jobs that survive process restarts.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}
