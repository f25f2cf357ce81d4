package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/domain/signup"
	"github.com/amberhearts/amberhearts/internal/platform/id"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

const (
	WelcomeJobPath = "/v1/internal/jobs/signup-welcome"
	NudgeJobPath   = "/v1/internal/jobs/signup-nudge"
)

type SignupConfig struct {
	// NudgeDelay is the wait between the welcome and the onboarding nudge.
	// Short in this deployment; the template stands in for a 24-48h drip.
	NudgeDelay  time.Duration
	MinBotScore float64
}

type SignUpInput struct {
	Email        string
	Password     string
	DisplayName  string
	CaptchaToken string
}

type SignupResult struct {
	UserID         string
	Email          string
	ProfileCreated bool
}

// WelcomeJobPayload travels through the job queue to the internal job routes,
// so the post-signup sequence survives a process restart.
type WelcomeJobPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SignupService struct {
	identity    IdentityProvider
	botVerifier BotVerifier
	profileRepo profile.Repository
	attemptRepo signup.Repository
	queue       JobQueue
	notifier    NotificationSender
	idGen       id.Generator
	cfg         SignupConfig
	logger      *logging.Logger
	now         func() time.Time

	// background collects fallback goroutines when no durable queue is
	// configured (local development); Wait is for tests.
	background conc.WaitGroup
	sleep      func(time.Duration)
}

func NewSignupService(
	identity IdentityProvider,
	botVerifier BotVerifier,
	profileRepo profile.Repository,
	attemptRepo signup.Repository,
	queue JobQueue,
	notifier NotificationSender,
	idGen id.Generator,
	cfg SignupConfig,
	logger *logging.Logger,
) *SignupService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if cfg.NudgeDelay <= 0 {
		cfg.NudgeDelay = 5 * time.Second
	}

	return &SignupService{
		identity:    identity,
		botVerifier: botVerifier,
		profileRepo: profileRepo,
		attemptRepo: attemptRepo,
		queue:       queue,
		notifier:    notifier,
		idGen:       idGen,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// SignUp runs the email+password path of the signup state machine. The bot
// check always happens before the identity provider is contacted; a failed
// check is terminal for the attempt.
func (s *SignupService) SignUp(ctx context.Context, input SignUpInput) (SignupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.SignUp")
	defer span.End()

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.CaptchaToken = strings.TrimSpace(input.CaptchaToken)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return SignupResult{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Password) == "" {
		return SignupResult{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if input.CaptchaToken == "" {
		return SignupResult{}, fmt.Errorf("%w: captcha token is missing", ErrVerificationFailed)
	}

	attemptID, err := s.idGen.NewID()
	if err != nil {
		return SignupResult{}, fmt.Errorf("generate attempt id: %w", err)
	}
	attempt := signup.Attempt{
		ID:     attemptID,
		Email:  input.Email,
		Method: signup.MethodEmail,
		State:  signup.StateSubmitted,
	}
	s.recordAttempt(ctx, &attempt, signup.StateBotCheckPending, "")

	verdict, err := s.botVerifier.Verify(ctx, input.CaptchaToken)
	if err != nil {
		s.recordAttempt(ctx, &attempt, signup.StateBotCheckPending, err.Error())
		return SignupResult{}, fmt.Errorf("%w: bot verification: %v", ErrDependencyUnavailable, err)
	}
	if !verdict.Success || (verdict.HasScore && verdict.Score < s.cfg.MinBotScore) {
		s.recordAttempt(ctx, &attempt, signup.StateBotCheckFailed, "")
		return SignupResult{}, fmt.Errorf("%w: captcha challenge was not passed", ErrVerificationFailed)
	}
	s.recordAttempt(ctx, &attempt, signup.StateBotCheckPassed, "")

	s.recordAttempt(ctx, &attempt, signup.StateIdentityPending, "")
	identity, err := s.identity.SignUp(ctx, input.Email, input.Password, map[string]string{
		"display_name": strings.TrimSpace(input.DisplayName),
	})
	if err != nil {
		s.recordAttempt(ctx, &attempt, signup.StateIdentityFailed, err.Error())
		return SignupResult{}, fmt.Errorf("identity sign up: %w", err)
	}
	attempt.UserID = identity.UserID
	s.recordAttempt(ctx, &attempt, signup.StateIdentityCreated, "")

	if identity.DisplayName == "" {
		identity.DisplayName = strings.TrimSpace(input.DisplayName)
	}
	created, err := s.bootstrapProfile(ctx, identity)
	if err != nil {
		return SignupResult{}, err
	}
	s.recordAttempt(ctx, &attempt, signup.StateProfileBootstrapped, "")

	s.scheduleWelcomeSequence(ctx, identity.UserID, identity.Email)

	return SignupResult{
		UserID:         identity.UserID,
		Email:          identity.Email,
		ProfileCreated: created,
	}, nil
}

// OAuthCallback handles the provider redirect. Safe to replay: the profile
// bootstrap is create-if-absent and an existing profile only gets its login
// bookkeeping refreshed, never its fields reset to defaults.
func (s *SignupService) OAuthCallback(ctx context.Context, code string) (SignupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.OAuthCallback")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		return SignupResult{}, fmt.Errorf("%w: oauth code is required", ErrInvalidInput)
	}

	identity, err := s.identity.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return SignupResult{}, fmt.Errorf("exchange oauth code: %w", err)
	}

	created, err := s.bootstrapProfile(ctx, identity)
	if err != nil {
		return SignupResult{}, err
	}

	if created {
		s.scheduleWelcomeSequence(ctx, identity.UserID, identity.Email)
	} else {
		s.refreshLoginBookkeeping(ctx, identity)
	}

	return SignupResult{
		UserID:         identity.UserID,
		Email:          identity.Email,
		ProfileCreated: created,
	}, nil
}

// RunWelcomeStep is the queue-delivered first step of the post-signup
// sequence: send the welcome and chain the delayed nudge. Errors bubble up so
// the queue retries; duplicate sends are tolerable, the dedup id is not
// reissued.
func (s *SignupService) RunWelcomeStep(ctx context.Context, payload WelcomeJobPayload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.RunWelcomeStep")
	defer span.End()

	if strings.TrimSpace(payload.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	if err := s.notifier.Send(ctx, payload.UserID, payload.Email, TemplateWelcome); err != nil {
		return fmt.Errorf("send welcome notification: %w", err)
	}

	if s.queue == nil {
		s.background.Go(func() {
			s.sleep(s.cfg.NudgeDelay)
			if err := s.notifier.Send(context.Background(), payload.UserID, payload.Email, TemplateOnboardingNudge); err != nil {
				s.logger.Warn("onboarding nudge failed", "user_id", payload.UserID, "error", err)
			}
		})
		return nil
	}

	if err := s.queue.Enqueue(ctx, NudgeJobPath, payload, s.cfg.NudgeDelay, "signup-nudge-"+payload.UserID); err != nil {
		return fmt.Errorf("enqueue onboarding nudge: %w", err)
	}

	return nil
}

// RunNudgeStep sends the delayed onboarding nudge. A failure here never
// reaches the member who already got their signup acknowledgement.
func (s *SignupService) RunNudgeStep(ctx context.Context, payload WelcomeJobPayload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.RunNudgeStep")
	defer span.End()

	if strings.TrimSpace(payload.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	if err := s.notifier.Send(ctx, payload.UserID, payload.Email, TemplateOnboardingNudge); err != nil {
		return fmt.Errorf("send onboarding nudge: %w", err)
	}

	return nil
}

// WaitForBackground blocks until in-process fallback sequences finish.
func (s *SignupService) WaitForBackground() {
	s.background.Wait()
}

func (s *SignupService) bootstrapProfile(ctx context.Context, identity IdentityResult) (bool, error) {
	displayName := strings.TrimSpace(identity.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(identity.Email, "@")
	}
	provider := identity.Provider
	if provider == "" {
		provider = "email"
	}

	defaults := profile.Defaults(identity.UserID, identity.Email, displayName, provider)
	defaults.PhotoURL = identity.AvatarURL
	defaults.EmailVerified = identity.EmailVerified
	now := s.now().UTC()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now
	defaults.LastLoginAt = now
	defaults.LoginCount = 1

	_, created, err := s.profileRepo.CreateIfAbsent(ctx, defaults)
	if err != nil {
		return false, fmt.Errorf("bootstrap profile: %w", err)
	}

	return created, nil
}

func (s *SignupService) refreshLoginBookkeeping(ctx context.Context, identity IdentityResult) {
	existing, exists, err := s.profileRepo.GetByUserID(ctx, identity.UserID)
	if err != nil || !exists {
		if err != nil {
			s.logger.WarnContext(ctx, "login bookkeeping read failed", "user_id", identity.UserID, "error", err)
		}
		return
	}

	existing.LoginCount++
	existing.LastLoginAt = s.now().UTC()
	existing.UpdatedAt = existing.LastLoginAt
	if identity.EmailVerified {
		existing.EmailVerified = true
	}

	if err := s.profileRepo.Update(ctx, existing); err != nil {
		s.logger.WarnContext(ctx, "login bookkeeping update failed", "user_id", identity.UserID, "error", err)
	}
}

// scheduleWelcomeSequence hands the sequence to the durable queue. The caller
// already has their acknowledgement, so nothing here may fail the signup.
func (s *SignupService) scheduleWelcomeSequence(ctx context.Context, userID, email string) {
	payload := WelcomeJobPayload{UserID: userID, Email: email}

	if s.queue == nil {
		s.runLocalSequence(payload)
		return
	}

	if err := s.queue.Enqueue(ctx, WelcomeJobPath, payload, 0, "signup-welcome-"+userID); err != nil {
		s.logger.ErrorContext(ctx, "enqueue welcome sequence failed, falling back to in-process run",
			"user_id", userID,
			"error", err,
		)
		s.runLocalSequence(payload)
	}
}

// runLocalSequence mirrors the durable chain with in-process timers. Only for
// environments without a job queue; a restart here drops the pending nudge.
func (s *SignupService) runLocalSequence(payload WelcomeJobPayload) {
	s.background.Go(func() {
		ctx := context.Background()
		if err := s.notifier.Send(ctx, payload.UserID, payload.Email, TemplateWelcome); err != nil {
			s.logger.Warn("welcome notification failed", "user_id", payload.UserID, "error", err)
		}
		s.sleep(s.cfg.NudgeDelay)
		if err := s.notifier.Send(ctx, payload.UserID, payload.Email, TemplateOnboardingNudge); err != nil {
			s.logger.Warn("onboarding nudge failed", "user_id", payload.UserID, "error", err)
		}
	})
}

// recordAttempt writes the audit trail. Best-effort: losing an audit row must
// not fail a signup that the collaborators accepted.
func (s *SignupService) recordAttempt(ctx context.Context, attempt *signup.Attempt, state signup.AttemptState, errMsg string) {
	attempt.State = state
	attempt.ErrorMessage = errMsg
	attempt.OccurredAt = s.now().UTC()

	if s.attemptRepo == nil {
		return
	}
	if err := s.attemptRepo.UpsertAttempt(ctx, *attempt); err != nil {
		s.logger.WarnContext(ctx, "record signup attempt failed",
			"attempt_id", attempt.ID,
			"state", string(state),
			"error", err,
		)
	}
}
