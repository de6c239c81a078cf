// Package origin decides whether a request origin belongs to an allow-listed
// domain.
package origin

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
)

// ErrEmptyAllowList is returned when no usable domain is configured.
var ErrEmptyAllowList = errors.New("origin allow-list is empty")

// Guard matches origins against a fixed set of domains. A domain allows itself
// and every subdomain below it.
type Guard struct {
	domains []string
	logger  *slog.Logger
}

// NewGuard normalises domains and builds a guard from them.
func NewGuard(domains []string, logger *slog.Logger) (*Guard, error) {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	if len(normalized) == 0 {
		return nil, ErrEmptyAllowList
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Guard{domains: normalized, logger: logger}, nil
}

// Domains returns the normalised allow-list.
func (g *Guard) Domains() []string {
	return append([]string(nil), g.domains...)
}

// IsAllowed reports whether origin resolves to an allow-listed host. Empty or
// unparseable origins are rejected.
func (g *Guard) IsAllowed(origin string) bool {
	host, ok := Hostname(origin)
	if !ok {
		g.logger.Warn("origin rejected", slog.String("origin", origin), slog.String("reason", "unparseable"))
		return false
	}

	for _, d := range g.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			g.logger.Info("origin allowed", slog.String("host", host), slog.String("domain", d))
			return true
		}
	}

	g.logger.Warn("origin rejected", slog.String("origin", origin), slog.String("host", host))
	return false
}

// Hostname extracts the lower-cased host from a URL, a host:port pair or a
// bare host.
func Hostname(origin string) (string, bool) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", false
	}
	if !strings.Contains(origin, "://") {
		origin = "//" + origin
	}

	u, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || strings.ContainsAny(host, " /\\@") {
		return "", false
	}
	return host, true
}
