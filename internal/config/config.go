package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	DBURL                   string
	DBDisablePreparedBinary bool

	CORSAllowedOrigins []string
	SwaggerEnabled     bool

	TokenCacheTTL       time.Duration
	ProfileCacheEnabled bool
	ProfileCacheTTL     time.Duration

	GoTrueBaseURL               string
	GoTrueServiceKey            string
	GoTrueTimeout               time.Duration
	GoTrueCircuitEnabled        bool
	GoTrueCircuitFailureCount   int
	GoTrueCircuitOpenTimeout    time.Duration
	GoTrueCircuitHalfOpenMaxReq int

	TurnstileVerifyURL string
	TurnstileSecretKey string
	TurnstileTimeout   time.Duration
	SignupMinBotScore  float64
	SignupNudgeDelay   time.Duration

	CourierBaseURL   string
	CourierAuthToken string
	CourierTimeout   time.Duration

	RedisEnabled           bool
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	RateLimitPerWindow     int64
	RateLimitWindow        time.Duration

	InternalJobToken            string
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	tokenCacheTTL, err := time.ParseDuration(getEnv("TOKEN_CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TOKEN_CACHE_TTL: %w", err)
	}
	if tokenCacheTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_CACHE_TTL must be > 0")
	}

	profileCacheEnabled, err := strconv.ParseBool(getEnv("PROFILE_CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROFILE_CACHE_ENABLED: %w", err)
	}
	profileCacheTTL, err := time.ParseDuration(getEnv("PROFILE_CACHE_TTL", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROFILE_CACHE_TTL: %w", err)
	}
	if profileCacheTTL <= 0 {
		return Config{}, fmt.Errorf("PROFILE_CACHE_TTL must be > 0")
	}

	gotrueTimeout, err := time.ParseDuration(getEnv("GOTRUE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GOTRUE_TIMEOUT: %w", err)
	}
	gotrueCircuitEnabled, err := strconv.ParseBool(getEnv("GOTRUE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GOTRUE_CIRCUIT_ENABLED: %w", err)
	}
	gotrueCircuitFailureCount, err := getEnvAsInt("GOTRUE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse GOTRUE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if gotrueCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("GOTRUE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	gotrueCircuitOpenTimeout, err := time.ParseDuration(getEnv("GOTRUE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GOTRUE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if gotrueCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("GOTRUE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	gotrueCircuitHalfOpenMaxReq, err := getEnvAsInt("GOTRUE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse GOTRUE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if gotrueCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("GOTRUE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	turnstileTimeout, err := time.ParseDuration(getEnv("TURNSTILE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TURNSTILE_TIMEOUT: %w", err)
	}
	signupMinBotScore, err := getEnvAsFloat("SIGNUP_MIN_BOT_SCORE", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse SIGNUP_MIN_BOT_SCORE: %w", err)
	}
	if signupMinBotScore < 0 || signupMinBotScore > 1 {
		return Config{}, fmt.Errorf("SIGNUP_MIN_BOT_SCORE must be between 0 and 1")
	}
	signupNudgeDelay, err := time.ParseDuration(getEnv("SIGNUP_NUDGE_DELAY", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SIGNUP_NUDGE_DELAY: %w", err)
	}
	if signupNudgeDelay <= 0 {
		return Config{}, fmt.Errorf("SIGNUP_NUDGE_DELAY must be > 0")
	}

	courierTimeout, err := time.ParseDuration(getEnv("COURIER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse COURIER_TIMEOUT: %w", err)
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisAddr := strings.TrimSpace(getEnv("REDIS_ADDR", ""))
	if redisEnabled && redisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	rateLimitPerWindow, err := getEnvAsInt("RATE_LIMIT_PER_WINDOW", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_PER_WINDOW: %w", err)
	}
	if rateLimitPerWindow < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_PER_WINDOW must be >= 0")
	}
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_WINDOW: %w", err)
	}
	if rateLimitWindow <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := time.ParseDuration(getEnv("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if qstashCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "amberhearts-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     swaggerEnabled,

		TokenCacheTTL:       tokenCacheTTL,
		ProfileCacheEnabled: profileCacheEnabled,
		ProfileCacheTTL:     profileCacheTTL,

		GoTrueBaseURL:               getEnv("GOTRUE_BASE_URL", "http://localhost:9999"),
		GoTrueServiceKey:            strings.TrimSpace(getEnv("GOTRUE_SERVICE_KEY", "")),
		GoTrueTimeout:               gotrueTimeout,
		GoTrueCircuitEnabled:        gotrueCircuitEnabled,
		GoTrueCircuitFailureCount:   gotrueCircuitFailureCount,
		GoTrueCircuitOpenTimeout:    gotrueCircuitOpenTimeout,
		GoTrueCircuitHalfOpenMaxReq: gotrueCircuitHalfOpenMaxReq,

		TurnstileVerifyURL: strings.TrimSpace(getEnv("TURNSTILE_VERIFY_URL", "")),
		TurnstileSecretKey: strings.TrimSpace(getEnv("TURNSTILE_SECRET_KEY", "")),
		TurnstileTimeout:   turnstileTimeout,
		SignupMinBotScore:  signupMinBotScore,
		SignupNudgeDelay:   signupNudgeDelay,

		CourierBaseURL:   getEnv("COURIER_BASE_URL", "https://api.courier.com"),
		CourierAuthToken: strings.TrimSpace(getEnv("COURIER_AUTH_TOKEN", "")),
		CourierTimeout:   courierTimeout,

		RedisEnabled:       redisEnabled,
		RedisAddr:          redisAddr,
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		RateLimitPerWindow: int64(rateLimitPerWindow),
		RateLimitWindow:    rateLimitWindow,

		InternalJobToken:            internalJobToken,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetBaseURL:         qstashTargetBaseURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
