// Package pipeline runs a form submission through origin, CAPTCHA and schema
// checks before rendering and mailing the notification.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/h190k/formrelay/internal/captcha"
	"github.com/h190k/formrelay/internal/forms"
	"github.com/h190k/formrelay/internal/templates"
)

const tracerName = "github.com/h190k/formrelay/internal/pipeline"

type OriginChecker interface {
	IsAllowed(origin string) bool
}

type Registry interface {
	Lookup(id string) (forms.Definition, bool)
}

type Renderer interface {
	Render(key string, data forms.Data) templates.Message
}

type Dispatcher interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// Deps are the collaborators of a Pipeline. Captcha may be nil, which turns
// CAPTCHA checks off.
type Deps struct {
	Origins  OriginChecker
	Captcha  captcha.Verifier
	Forms    Registry
	Renderer Renderer
	Mailer   Dispatcher
	Logger   *slog.Logger
}

// Submission is one inbound form post.
type Submission struct {
	FormID       string
	Data         forms.Data
	CaptchaToken string
	// Origin is the origin declared in the request body; it takes precedence
	// over HeaderOrigin.
	Origin       string
	HeaderOrigin string
	ClientIP     string
}

// Result describes a delivered submission.
type Result struct {
	FormID     string
	Origin     string
	Subject    string
	Recipients []string
}

// Pipeline is immutable after New and safe for concurrent use.
type Pipeline struct {
	origins  OriginChecker
	captcha  captcha.Verifier
	forms    Registry
	renderer Renderer
	mailer   Dispatcher
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Origins == nil:
		return nil, errors.New("pipeline: origin checker is required")
	case deps.Forms == nil:
		return nil, errors.New("pipeline: form registry is required")
	case deps.Renderer == nil:
		return nil, errors.New("pipeline: renderer is required")
	case deps.Mailer == nil:
		return nil, errors.New("pipeline: mail dispatcher is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		origins:  deps.Origins,
		captcha:  deps.Captcha,
		forms:    deps.Forms,
		renderer: deps.Renderer,
		mailer:   deps.Mailer,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// CaptchaEnabled reports whether submissions must carry a CAPTCHA token.
func (p *Pipeline) CaptchaEnabled() bool {
	return p.captcha != nil
}

// Submit validates sub and mails the rendered notification. Every failure is
// an *Error; nothing is sent unless all checks pass.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Submit",
		trace.WithAttributes(attribute.String("form.id", sub.FormID)),
	)
	defer span.End()

	origin := sub.Origin
	if origin == "" {
		origin = sub.HeaderOrigin
	}

	log := p.logger.With(
		slog.String("form_id", sub.FormID),
		slog.String("origin", origin),
		slog.String("client_ip", sub.ClientIP),
	)

	fail := func(e *Error, attrs ...any) (*Result, error) {
		log.Warn("submission rejected", append([]any{slog.String("reason", e.Error())}, attrs...)...)
		span.RecordError(e)
		span.SetStatus(codes.Error, e.Kind.Error())
		return nil, e
	}

	if !p.origins.IsAllowed(origin) {
		return fail(reject(ErrOriginForbidden))
	}
	span.AddEvent("origin allowed")

	switch {
	case sub.CaptchaToken != "":
		// A token nobody can verify is not accepted either.
		if p.captcha == nil || !p.captcha.Verify(ctx, sub.CaptchaToken, sub.ClientIP) {
			return fail(reject(ErrCaptchaFailed))
		}
		span.AddEvent("captcha verified", trace.WithAttributes(
			attribute.String("captcha.provider", string(p.captcha.Provider())),
		))
	case p.captcha != nil:
		return fail(reject(ErrCaptchaRequired))
	}

	def, ok := p.forms.Lookup(sub.FormID)
	if !ok {
		return fail(reject(ErrFormNotFound))
	}

	for _, field := range def.RequiredFields {
		if !sub.Data.Has(field) {
			return fail(&Error{Kind: ErrMissingField, Field: field}, slog.String("field", field))
		}
	}
	span.AddEvent("fields present")

	msg := p.renderer.Render(def.TemplateKey, sub.Data)
	span.SetAttributes(attribute.String("template.key", def.TemplateKey))

	if err := p.mailer.Send(ctx, def.Recipients, msg.Subject, msg.Body); err != nil {
		e := &Error{Kind: ErrMailDispatchFailed, Err: err}
		log.Error("submission error", slog.String("error", err.Error()))
		span.RecordError(e)
		span.SetStatus(codes.Error, ErrMailDispatchFailed.Error())
		return nil, e
	}
	span.AddEvent("mail sent", trace.WithAttributes(attribute.Int("mail.recipients", len(def.Recipients))))

	log.Info("form submitted successfully")

	return &Result{
		FormID:     def.ID,
		Origin:     origin,
		Subject:    msg.Subject,
		Recipients: def.Recipients,
	}, nil
}
