package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/amberhearts/amberhearts/internal/config"
	"github.com/amberhearts/amberhearts/internal/domain/onboarding"
	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/domain/signup"
	"github.com/amberhearts/amberhearts/internal/infrastructure/account/gotrue"
	"github.com/amberhearts/amberhearts/internal/infrastructure/botcheck/turnstile"
	"github.com/amberhearts/amberhearts/internal/infrastructure/counter"
	"github.com/amberhearts/amberhearts/internal/infrastructure/jobqueue"
	"github.com/amberhearts/amberhearts/internal/infrastructure/notification/courier"
	repocache "github.com/amberhearts/amberhearts/internal/infrastructure/repository/cache"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/memory"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/postgres"
	"github.com/amberhearts/amberhearts/internal/interfaces/httpapi"
	"github.com/amberhearts/amberhearts/internal/platform/cache"
	idgen "github.com/amberhearts/amberhearts/internal/platform/id"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
	"github.com/amberhearts/amberhearts/internal/platform/resilience"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

// Application bundles the HTTP server with the handles main needs for a
// clean shutdown.
type Application struct {
	Server        *http.Server
	SignupService *usecase.SignupService

	closers []func() error
}

func NewApplication(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	appLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(appLogger)

	app := &Application{}

	var (
		profileRepo  profile.Repository
		progressRepo onboarding.Repository
		attemptRepo  signup.Repository
	)
	if cfg.DBURL != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		profileRepo = postgres.NewProfileRepository(db)
		progressRepo = postgres.NewOnboardingRepository(db)
		attemptRepo = postgres.NewSignupAttemptRepository(db)
		logger.Info("using postgres repositories", "database", dbNameFromURL(cfg.DBURL))
	} else {
		profileRepo = memory.NewProfileRepository()
		progressRepo = memory.NewOnboardingRepository()
		attemptRepo = memory.NewSignupAttemptRepository()
		logger.Warn("DB_URL is empty, using in-memory repositories")
	}

	if cfg.ProfileCacheEnabled {
		profileRepo = repocache.NewProfileRepository(profileRepo, cache.NewStore(cfg.ProfileCacheTTL))
	}

	identity := gotrue.NewClient(gotrue.Config{
		BaseURL:       cfg.GoTrueBaseURL,
		ServiceKey:    cfg.GoTrueServiceKey,
		Timeout:       cfg.GoTrueTimeout,
		TokenCacheTTL: cfg.TokenCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GoTrueCircuitEnabled,
			FailureThreshold: cfg.GoTrueCircuitFailureCount,
			OpenTimeout:      cfg.GoTrueCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GoTrueCircuitHalfOpenMaxReq,
		},
	}, logger)

	botVerifier := turnstile.NewClient(turnstile.Config{
		VerifyURL: cfg.TurnstileVerifyURL,
		SecretKey: cfg.TurnstileSecretKey,
		Timeout:   cfg.TurnstileTimeout,
	}, logger)

	notifier := courier.NewClient(courier.Config{
		BaseURL:   cfg.CourierBaseURL,
		AuthToken: cfg.CourierAuthToken,
		Timeout:   cfg.CourierTimeout,
	}, logger)

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		logger.Warn("QSTASH_ENABLED=false, delayed jobs run on local goroutines")
	}

	var rateCounter httpapi.RateCounter
	if cfg.RedisEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, redisClient.Close)
		rateCounter = counter.NewRedisWindow(redisClient, cfg.RateLimitWindow)
		logger.Info("redis rate limiting enabled", "window", cfg.RateLimitWindow, "max_per_window", cfg.RateLimitPerWindow)
	}

	signupSvc := usecase.NewSignupService(
		identity,
		botVerifier,
		profileRepo,
		attemptRepo,
		queue,
		notifier,
		idgen.NewRandomGenerator(),
		usecase.SignupConfig{
			NudgeDelay:  cfg.SignupNudgeDelay,
			MinBotScore: cfg.SignupMinBotScore,
		},
		appLogger,
	)
	profileSvc := usecase.NewProfileService(profileRepo)
	onboardingSvc := usecase.NewOnboardingService(progressRepo, profileSvc, appLogger)
	compatibilitySvc := usecase.NewCompatibilityService(profileRepo)
	backfillSvc := usecase.NewCompletionBackfillService(profileRepo, appLogger)

	handler := httpapi.NewHandler(signupSvc, onboardingSvc, profileSvc, compatibilitySvc, backfillSvc, logger)
	router := httpapi.NewRouter(handler, identity, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		RateCounter:        rateCounter,
		RateLimitPerWindow: cfg.RateLimitPerWindow,
	})

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	app.SignupService = signupSvc

	return app, nil
}

// Close waits for local fallback jobs to drain, then releases held
// resources in reverse wiring order.
func (a *Application) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		if a.SignupService != nil {
			a.SignupService.WaitForBackground()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = logging.Default().Sync()
	return firstErr
}

// SlogLevel maps the zap-backed log level onto slog for the process logger.
func SlogLevel(level logging.Level) slog.Level {
	switch {
	case level <= logging.LevelDebug:
		return slog.LevelDebug
	case level == logging.LevelInfo:
		return slog.LevelInfo
	case level == logging.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
