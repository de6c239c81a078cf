package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	envfile "github.com/h190k/formrelay/internal/config/env"
	"github.com/h190k/formrelay/internal/logging"
)

// ErrInvalidConfig is returned when a required value is missing or malformed.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mail transports
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
	TransportLog    = "log"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment     string        `env:"ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"8000"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Mail Configuration
	MailUser          string        `env:"GMAIL_USER"`
	MailPassword      string        `env:"GMAIL_APP_PASSWORD"`
	RecipientEmail    string        `env:"RECIPIENT_EMAIL"`
	MailTransport     string        `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	SMTPAddr          string        `env:"SMTP_ADDR" envDefault:"smtp.gmail.com:587"`
	SMTPRequireTLS    bool          `env:"SMTP_REQUIRE_TLS" envDefault:"true"`
	ResendAPIKey      string        `env:"RESEND_API_KEY"`
	MailSendTimeout   time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"30s"`
	EscapeFieldValues bool          `env:"ESCAPE_FIELD_VALUES" envDefault:"false"`

	// Security Configuration
	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:","`
	TrustedProxies    []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	AllowedDomains    []string      `env:"ALLOWED_DOMAINS" envSeparator:","`
	TurnstileSecret   string        `env:"TURNSTILE_SECRET_KEY"`
	RecaptchaSecret   string        `env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaMinScore float64       `env:"RECAPTCHA_MIN_SCORE" envDefault:"0"`
	CaptchaTimeout    time.Duration `env:"CAPTCHA_TIMEOUT" envDefault:"10s"`

	// Forms Configuration
	FormsFile string `env:"FORMS_FILE"`

	// Logging Configuration
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile     string `env:"LOG_FILE"`
	LogRequests bool   `env:"LOG_REQUESTS" envDefault:"true"`
	SentryDSN   string `env:"SENTRY_DSN"`

	// Telemetry Configuration
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load loads the configuration from dotenv files and the process environment.
func Load() (*Config, error) {
	if _, err := envfile.LoadEnv(); err != nil {
		return nil, err
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil, and validates it.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.MailUser = strings.TrimSpace(c.MailUser)
	c.MailPassword = strings.TrimSpace(c.MailPassword)
	c.RecipientEmail = strings.TrimSpace(c.RecipientEmail)
	c.MailTransport = strings.ToLower(strings.TrimSpace(c.MailTransport))
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.CORSOrigins = splitList(c.CORSOrigins)
	c.AllowedDomains = splitList(c.AllowedDomains)
	c.TrustedProxies = splitList(c.TrustedProxies)
}

// Validate fails fast on anything the service cannot start without.
func (c *Config) Validate() error {
	if c.MailUser == "" {
		return invalid("GMAIL_USER is required")
	}
	if c.RecipientEmail == "" {
		return invalid("RECIPIENT_EMAIL is required")
	}
	if _, err := mail.ParseAddress(c.RecipientEmail); err != nil {
		return invalid("RECIPIENT_EMAIL is not a valid address")
	}
	if len(c.CORSOrigins) == 0 {
		return invalid("CORS_ORIGINS is required")
	}
	if len(c.AllowedDomains) == 0 {
		return invalid("ALLOWED_DOMAINS is required")
	}

	switch c.MailTransport {
	case TransportSMTP:
		if c.MailPassword == "" {
			return invalid("GMAIL_APP_PASSWORD is required")
		}
		if c.SMTPAddr == "" {
			return invalid("SMTP_ADDR is required")
		}
	case TransportResend:
		if c.ResendAPIKey == "" {
			return invalid("RESEND_API_KEY is required when MAIL_TRANSPORT=resend")
		}
	case TransportLog:
	default:
		return invalid(fmt.Sprintf("unknown MAIL_TRANSPORT %q", c.MailTransport))
	}

	for _, proxy := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return invalid(fmt.Sprintf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
		}
	}

	if c.RecaptchaMinScore < 0 || c.RecaptchaMinScore > 1 {
		return invalid("RECAPTCHA_MIN_SCORE must be between 0 and 1")
	}
	if c.CaptchaTimeout <= 0 {
		return invalid("CAPTCHA_TIMEOUT must be positive")
	}
	if c.MailSendTimeout <= 0 {
		return invalid("MAIL_SEND_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return invalid("MAX_BODY_BYTES must be positive")
	}

	logCfg := c.Logging()
	if err := logCfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() *logging.Config {
	return &logging.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		File:        c.LogFile,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      7,
		LogRequests: c.LogRequests,
		SentryDSN:   c.SentryDSN,
		Environment: c.Environment,
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
