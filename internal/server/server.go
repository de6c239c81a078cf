package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/h190k/formrelay/internal/api/handlers"
	"github.com/h190k/formrelay/internal/api/middleware"
	"github.com/h190k/formrelay/internal/captcha"
	"github.com/h190k/formrelay/internal/config"
	"github.com/h190k/formrelay/internal/forms"
	"github.com/h190k/formrelay/internal/logging"
	"github.com/h190k/formrelay/internal/mail"
	"github.com/h190k/formrelay/internal/origin"
	"github.com/h190k/formrelay/internal/pipeline"
	"github.com/h190k/formrelay/internal/server/routes"
	"github.com/h190k/formrelay/internal/templates"
)

// ServiceName identifies the service in traces and user agents
const ServiceName = "formrelay"

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	router   *gin.Engine
	registry *forms.Registry
	verifier captcha.Verifier
	domains  []string
}

// Option overrides a collaborator built from configuration
type Option func(*options)

type options struct {
	sender   mail.Sender
	registry *forms.Registry
	captcha  []captcha.Option
}

// WithSender replaces the configured mail transport
func WithSender(s mail.Sender) Option {
	return func(o *options) { o.sender = s }
}

// WithRegistry replaces the configured form registry
func WithRegistry(r *forms.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithCaptchaOptions tunes the CAPTCHA verifier, e.g. to point it at a test
// server
func WithCaptchaOptions(opts ...captcha.Option) Option {
	return func(o *options) { o.captcha = append(o.captcha, opts...) }
}

// New wires every component from cfg and builds the router
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry := o.registry
	if registry == nil {
		r, err := NewRegistry(cfg)
		if err != nil {
			return nil, err
		}
		registry = r
	}

	sender := o.sender
	if sender == nil {
		s, err := NewSender(cfg, logger.Logger)
		if err != nil {
			return nil, err
		}
		sender = s
	}

	guard, err := origin.NewGuard(cfg.AllowedDomains, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	verifier := captcha.Select(CaptchaConfig(cfg), logger.Logger, o.captcha...)

	var renderOpts []templates.Option
	if cfg.EscapeFieldValues {
		renderOpts = append(renderOpts, templates.WithEscaping())
	}
	renderer := templates.NewRenderer(renderOpts...)
	if !renderer.Escaping() {
		logger.Debug("submitted values are inserted into emails unescaped")
	}

	for _, f := range registry.List() {
		def, _ := registry.Lookup(f.ID)
		if !templates.Known(def.TemplateKey) {
			logger.Info("form uses the generic template",
				slog.String("form", def.ID), slog.String("template", def.TemplateKey))
		}
	}

	p, err := pipeline.New(pipeline.Deps{
		Origins:  guard,
		Captcha:  verifier,
		Forms:    registry,
		Renderer: renderer,
		Mailer:   mail.NewDispatcher(sender, cfg.MailUser, cfg.MailSendTimeout, logger.Logger),
		Logger:   logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	providerName := ""
	if p.CaptchaEnabled() {
		providerName = string(verifier.Provider())
	}

	router := gin.New()
	// Forwarding headers only count from these peers; nil trusts none.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("%w: TRUSTED_PROXIES: %v", config.ErrInvalidConfig, err)
	}
	routes.SetupGlobalMiddleware(router, logger, routes.GlobalOptions{
		ServiceName:  ServiceName,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	routes.Setup(router,
		&routes.Handlers{
			Health: handlers.NewHealthHandler(providerName),
			Forms:  handlers.NewFormsHandler(registry, logger.Logger),
			Submit: handlers.NewSubmitHandler(p, logger.Logger),
		},
		&routes.Middleware{
			Validation: middleware.NewValidationMiddleware(logger.Logger),
		},
	)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		router:   router,
		registry: registry,
		verifier: verifier,
		domains:  guard.Domains(),
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured port until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most the configured shutdown timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.CaptchaTimeout + s.cfg.MailSendTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logStartup(ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server", slog.Duration("timeout", s.cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) logStartup(addr string) {
	captchaProvider := "disabled"
	if s.verifier != nil {
		captchaProvider = string(s.verifier.Provider())
	}

	s.logger.Info("Dynamic Form API started",
		slog.String("addr", addr),
		slog.String("env", s.cfg.Environment),
		slog.String("mail_transport", s.cfg.MailTransport),
		slog.String("captcha", captchaProvider),
		slog.Any("allowed_domains", s.domains),
		slog.Int("forms", s.registry.Len()),
	)
	for _, f := range s.registry.List() {
		s.logger.Info("form available", slog.String("id", f.ID), slog.String("name", f.DisplayName))
	}
}
