package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "ReferralEngine"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultRPM             = 60
	defaultRPH             = 1000
	defaultSignupBonus     = 4.0
	defaultMinDeposit      = 1.0
	defaultMaxDeposit      = 10000.0
	defaultCleanupInterval = 10 * time.Minute
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Abuse guard limits.
	RateLimitRPM         int
	RateLimitRPH         int
	GuardCleanupInterval time.Duration

	// Referral program economics.
	SignupBonus float64
	MinDeposit  float64
	MaxDeposit  float64

	// Bcrypt hash of the operator token. Admin routes are disabled when empty.
	AdminTokenHash string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:              getEnv("APP_NAME", defaultAppName),
		AppEnv:               getEnv("APP_ENV", defaultAppEnv),
		Port:                 getEnv("PORT", defaultPort),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		ShutdownPeriod:       defaultShutdownDelay,
		IdempotencyTTL:       defaultIdempotencyTTL,
		GuardCleanupInterval: defaultCleanupInterval,
		AdminTokenHash:       os.Getenv("ADMIN_TOKEN_HASH"),
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	var err error
	if cfg.RateLimitRPM, err = intEnv("RATE_LIMIT_RPM", defaultRPM); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPH, err = intEnv("RATE_LIMIT_RPH", defaultRPH); err != nil {
		return Config{}, err
	}
	if cfg.SignupBonus, err = floatEnv("SIGNUP_BONUS", defaultSignupBonus); err != nil {
		return Config{}, err
	}
	if cfg.MinDeposit, err = floatEnv("MIN_DEPOSIT", defaultMinDeposit); err != nil {
		return Config{}, err
	}
	if cfg.MaxDeposit, err = floatEnv("MAX_DEPOSIT", defaultMaxDeposit); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("GUARD_CLEANUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GUARD_CLEANUP_INTERVAL: %w", err)
		}
		cfg.GuardCleanupInterval = d
	}

	if cfg.MinDeposit > cfg.MaxDeposit {
		return Config{}, fmt.Errorf("MIN_DEPOSIT (%v) exceeds MAX_DEPOSIT (%v)", cfg.MinDeposit, cfg.MaxDeposit)
	}

	if !isDev(cfg.AppEnv) {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the configured environment is a development one.
func (c Config) IsDev() bool {
	return isDev(c.AppEnv)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
