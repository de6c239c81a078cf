package server

import (
	"fmt"
	"log/slog"

	"github.com/h190k/formrelay/internal/captcha"
	"github.com/h190k/formrelay/internal/config"
	"github.com/h190k/formrelay/internal/forms"
	"github.com/h190k/formrelay/internal/mail"
)

// NewRegistry loads the forms file when one is configured and falls back to
// the built-in forms otherwise.
func NewRegistry(cfg *config.Config) (*forms.Registry, error) {
	defs := forms.Defaults()
	if cfg.FormsFile != "" {
		loaded, err := forms.LoadFile(cfg.FormsFile, cfg.RecipientEmail)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}

	registry, err := forms.NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("failed to build form registry: %w", err)
	}
	return registry, nil
}

// NewSender builds the mail transport selected by MAIL_TRANSPORT.
func NewSender(cfg *config.Config, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.MailTransport {
	case config.TransportSMTP:
		return NewSMTPSender(cfg), nil
	case config.TransportResend:
		return mail.NewResendSender(cfg.ResendAPIKey), nil
	case config.TransportLog:
		logger.Warn("MAIL_TRANSPORT=log: notifications are logged, not delivered")
		return mail.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown MAIL_TRANSPORT %q", config.ErrInvalidConfig, cfg.MailTransport)
	}
}

// NewSMTPSender builds the SMTP transport from configuration.
func NewSMTPSender(cfg *config.Config) *mail.SMTPSender {
	return mail.NewSMTPSender(mail.SMTPConfig{
		Addr:       cfg.SMTPAddr,
		Username:   cfg.MailUser,
		Password:   cfg.MailPassword,
		RequireTLS: cfg.SMTPRequireTLS,
	})
}

// CaptchaConfig extracts the CAPTCHA settings.
func CaptchaConfig(cfg *config.Config) captcha.Config {
	return captcha.Config{
		TurnstileSecret:   cfg.TurnstileSecret,
		RecaptchaSecret:   cfg.RecaptchaSecret,
		RecaptchaMinScore: cfg.RecaptchaMinScore,
		Timeout:           cfg.CaptchaTimeout,
	}
}
