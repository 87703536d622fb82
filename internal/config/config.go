package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"civicauth/internal/pkg/jwt"
)

const (
	defaultAccessSecret  = "change-me-access-secret"
	defaultRefreshSecret = "change-me-refresh-secret"
	defaultAccessTTL     = "15m"
	defaultRefreshTTL    = "7d"
	defaultCleanupEvery  = "1h"
)

type Config struct {
	AppEnv      string
	DatabaseURL string

	// Access and refresh tokens are signed with distinct secrets so a leak
	// of one cannot forge the other family.
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	CleanupInterval time.Duration
}

// Load reads the runtime configuration from the environment. TTL values use
// the "<integer><s|m|h|d>" grammar and silently fall back to their defaults
// when malformed; secrets are validated only in prod-like environments.
func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	// JWT_ACCESS_SECRET is preferred; JWT_SECRET kept as a legacy fallback.
	cfg.JWTAccessSecret = strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET"))
	if cfg.JWTAccessSecret == "" {
		cfg.JWTAccessSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultAccessSecret))
	}
	cfg.JWTRefreshSecret = strings.TrimSpace(getEnv("JWT_REFRESH_SECRET", defaultRefreshSecret))

	cfg.AccessTTL = jwt.ParseTTL(getEnv("JWT_ACCESS_TTL", defaultAccessTTL), jwt.DefaultAccessTTL)
	cfg.RefreshTTL = jwt.ParseTTL(getEnv("JWT_REFRESH_TTL", defaultRefreshTTL), jwt.DefaultRefreshTTL)
	cfg.CleanupInterval = jwt.ParseTTL(getEnv("CLEANUP_INTERVAL", defaultCleanupEvery), time.Hour)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTAccessSecret, defaultAccessSecret) {
			return fmt.Errorf("in prod/release JWT_ACCESS_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.JWTRefreshSecret, defaultRefreshSecret) {
			return fmt.Errorf("in prod/release JWT_REFRESH_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
