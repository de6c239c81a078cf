// Package captcha verifies anti-abuse tokens against Cloudflare Turnstile or
// Google reCAPTCHA.
package captcha

import (
	"context"
	"log/slog"
	"time"
)

// Provider names a CAPTCHA service.
type Provider string

const (
	ProviderTurnstile Provider = "turnstile"
	ProviderRecaptcha Provider = "recaptcha"
)

// Verify endpoints
const (
	TurnstileEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	RecaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"
)

// DefaultTimeout bounds a single verification call.
const DefaultTimeout = 10 * time.Second

// Verifier checks a token with the configured provider. Verify never returns an
// error: anything other than a positive answer from the provider is false.
type Verifier interface {
	Provider() Provider
	Verify(ctx context.Context, token, remoteIP string) bool
}

// Config holds the provider secrets and tuning knobs read at startup.
type Config struct {
	TurnstileSecret   string
	RecaptchaSecret   string
	RecaptchaMinScore float64
	Timeout           time.Duration

	// Endpoint overrides for tests and self-hosted proxies.
	TurnstileEndpoint string
	RecaptchaEndpoint string
}

// Select picks the active provider. Turnstile wins when both secrets are set;
// nil is returned when neither is, which disables CAPTCHA checks entirely.
func Select(cfg Config, logger *slog.Logger, opts ...Option) Verifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	base := []Option{WithTimeout(cfg.Timeout)}

	switch {
	case cfg.TurnstileSecret != "":
		if cfg.RecaptchaSecret != "" {
			logger.Warn("both Turnstile and reCAPTCHA configured, using Turnstile")
		} else {
			logger.Info("Turnstile CAPTCHA enabled")
		}
		if cfg.TurnstileEndpoint != "" {
			base = append(base, WithEndpoint(cfg.TurnstileEndpoint))
		}
		return NewTurnstile(cfg.TurnstileSecret, logger, append(base, opts...)...)

	case cfg.RecaptchaSecret != "":
		logger.Info("reCAPTCHA CAPTCHA enabled", slog.Float64("min_score", cfg.RecaptchaMinScore))
		base = append(base, WithMinScore(cfg.RecaptchaMinScore))
		if cfg.RecaptchaEndpoint != "" {
			base = append(base, WithEndpoint(cfg.RecaptchaEndpoint))
		}
		return NewRecaptcha(cfg.RecaptchaSecret, logger, append(base, opts...)...)

	default:
		logger.Warn("no CAPTCHA configured, not recommended for production")
		return nil
	}
}
