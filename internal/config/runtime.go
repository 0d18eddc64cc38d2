package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// The session cookie authenticates every protected route, so its default
// path covers the whole API surface.
const (
	defaultSessionTTL         = "24h"
	defaultResetTokenTTL      = "1h"
	defaultVerifyCodeTTL      = "5m"
	defaultVerifyResend       = "60s"
	defaultCookieSecure       = "false"
	defaultCookieSameSite     = "Lax"
	defaultCookiePath         = "/api/v1"
	defaultBaseURL            = "http://localhost:3000"
	defaultSessionTokenPepper = "change-me-session-pepper"
	defaultResetTokenPepper   = "change-me-reset-pepper"
	defaultAPIKeyPepper       = "change-me-apikey-pepper"
	defaultVerifyCodePepper   = "change-me-verification-pepper"
)

type RuntimeConfig struct {
	AppEnv                 string
	BaseURL                string
	SessionTTL             time.Duration
	SessionTokenPepper     string
	ResetTokenTTL          time.Duration
	ResetTokenPepper       string
	APIKeyPepper           string
	VerificationCodePepper string
	VerifyCodeTTL          time.Duration
	VerifyResendCooldown   time.Duration
	CookieSecure           bool
	CookieSameSite         string
	CookiePath             string

	// KeepCurrentSession controls whether an authenticated password change
	// leaves the caller's own session alive. Default false: full fan-out,
	// the caller is signed out everywhere including here.
	KeepCurrentSession bool
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(getEnv("BASE_URL", defaultBaseURL)), "/")
	cfg.SessionTokenPepper = strings.TrimSpace(getEnv("SESSION_TOKEN_PEPPER", defaultSessionTokenPepper))
	cfg.ResetTokenPepper = strings.TrimSpace(getEnv("RESET_TOKEN_PEPPER", defaultResetTokenPepper))
	cfg.APIKeyPepper = strings.TrimSpace(getEnv("API_KEY_PEPPER", defaultAPIKeyPepper))
	cfg.VerificationCodePepper = strings.TrimSpace(getEnv("VERIFICATION_CODE_PEPPER", defaultVerifyCodePepper))

	var err error
	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	cfg.ResetTokenTTL, err = parseDurationEnv("RESET_TOKEN_TTL", defaultResetTokenTTL)
	if err != nil {
		return nil, err
	}

	cfg.VerifyCodeTTL, err = parseDurationEnv("VERIFY_CODE_TTL", defaultVerifyCodeTTL)
	if err != nil {
		return nil, err
	}

	cfg.VerifyResendCooldown, err = parseDurationEnv("VERIFY_RESEND_COOLDOWN", defaultVerifyResend)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))
	cfg.CookiePath = strings.TrimSpace(getEnv("COOKIE_PATH", defaultCookiePath))
	cfg.KeepCurrentSession = parseBoolEnv("PASSWORD_KEEP_CURRENT_SESSION", "false")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("auth cookie config: secure=%t, sameSite=%s, path=%s", cfg.CookieSecure, cfg.CookieSameSite, cfg.CookiePath)

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be > 0")
	}
	if cfg.VerifyCodeTTL <= 0 {
		return fmt.Errorf("VERIFY_CODE_TTL must be > 0")
	}
	if cfg.VerifyResendCooldown <= 0 {
		return fmt.Errorf("VERIFY_RESEND_COOLDOWN must be > 0")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("BASE_URL must not be empty")
	}
	if cfg.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}
	sameSite := strings.ToLower(strings.TrimSpace(cfg.CookieSameSite))
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.SessionTokenPepper, defaultSessionTokenPepper) {
			return fmt.Errorf("in prod/release SESSION_TOKEN_PEPPER must be set and not default")
		}
		if isEmptyOrDefault(cfg.ResetTokenPepper, defaultResetTokenPepper) {
			return fmt.Errorf("in prod/release RESET_TOKEN_PEPPER must be set and not default")
		}
		if isEmptyOrDefault(cfg.APIKeyPepper, defaultAPIKeyPepper) {
			return fmt.Errorf("in prod/release API_KEY_PEPPER must be set and not default")
		}
		if isEmptyOrDefault(cfg.VerificationCodePepper, defaultVerifyCodePepper) {
			return fmt.Errorf("in prod/release VERIFICATION_CODE_PEPPER must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

// IsProd reports whether reset links go out by email instead of the log.
func (c *RuntimeConfig) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
