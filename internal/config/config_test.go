package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_RedisRequiresAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when REDIS_ENABLED=true without REDIS_ADDR")
	}
}

func TestLoad_QStashRequiresTokensWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QSTASH_ENABLED=true without QSTASH_TOKEN")
	}
}

func TestLoad_SignupTuning(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SIGNUP_NUDGE_DELAY", "30s")
	t.Setenv("SIGNUP_MIN_BOT_SCORE", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SignupNudgeDelay != 30*time.Second {
		t.Fatalf("unexpected SignupNudgeDelay: %s", cfg.SignupNudgeDelay)
	}
	if cfg.SignupMinBotScore != 0.5 {
		t.Fatalf("unexpected SignupMinBotScore: %v", cfg.SignupMinBotScore)
	}
}

func TestLoad_RejectsOutOfRangeBotScore(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SIGNUP_MIN_BOT_SCORE", "1.5")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SIGNUP_MIN_BOT_SCORE out of range")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev keeps swagger on", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}
