package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 64 << 10

// Option configures a site verifier.
type Option func(*SiteVerifier)

// WithEndpoint overrides the provider's verify URL.
func WithEndpoint(endpoint string) Option {
	return func(v *SiteVerifier) {
		v.endpoint = endpoint
	}
}

// WithTimeout bounds each verification request. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(v *SiteVerifier) {
		if d > 0 {
			v.client.Timeout = d
		}
	}
}

// WithMinScore rejects successful reCAPTCHA v3 answers scoring below score.
func WithMinScore(score float64) Option {
	return func(v *SiteVerifier) {
		v.minScore = score
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(v *SiteVerifier) {
		if c != nil {
			v.client = c
		}
	}
}

// SiteVerifier implements the siteverify protocol shared by Turnstile and
// reCAPTCHA: a form POST with secret, response and remoteip, answered with a
// JSON document carrying a success flag.
type SiteVerifier struct {
	provider Provider
	secret   string
	endpoint string
	minScore float64
	client   *http.Client
	logger   *slog.Logger
}

// siteverifyResponse is the subset of the provider answer we act on.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// NewTurnstile creates a Cloudflare Turnstile verifier.
func NewTurnstile(secret string, logger *slog.Logger, opts ...Option) *SiteVerifier {
	return newSiteVerifier(ProviderTurnstile, secret, TurnstileEndpoint, logger, opts)
}

// NewRecaptcha creates a Google reCAPTCHA verifier.
func NewRecaptcha(secret string, logger *slog.Logger, opts ...Option) *SiteVerifier {
	return newSiteVerifier(ProviderRecaptcha, secret, RecaptchaEndpoint, logger, opts)
}

func newSiteVerifier(p Provider, secret, endpoint string, logger *slog.Logger, opts []Option) *SiteVerifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &SiteVerifier{
		provider: p,
		secret:   secret,
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logger.With(slog.String("provider", string(p))),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *SiteVerifier) Provider() Provider {
	return v.provider
}

// Verify asks the provider about token. An empty token fails without a
// request.
func (v *SiteVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if strings.TrimSpace(token) == "" {
		v.logger.Warn("CAPTCHA token is empty")
		return false
	}

	result, err := v.siteverify(ctx, token, remoteIP)
	if err != nil {
		v.logger.Error("CAPTCHA verification error", slog.String("error", err.Error()))
		return false
	}

	if !result.Success {
		v.logger.Warn("CAPTCHA verification failed", slog.Any("error_codes", result.ErrorCodes))
		return false
	}

	if v.minScore > 0 && result.Score != nil && *result.Score < v.minScore {
		v.logger.Warn("CAPTCHA score too low",
			slog.Float64("score", *result.Score),
			slog.Float64("min_score", v.minScore),
		)
		return false
	}

	return true
}

func (v *SiteVerifier) siteverify(ctx context.Context, token, remoteIP string) (*siteverifyResponse, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", v.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s API error: status %d", v.provider, resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", v.provider, err)
	}

	return &result, nil
}
