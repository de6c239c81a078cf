// Package mail delivers rendered notifications through SMTP, the Resend API
// or a dry-run logger.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrAuthenticationFailed indicates the relay rejected our credentials.
	ErrAuthenticationFailed = errors.New("mail: authentication failed")

	// ErrTransportFailed covers every other send-time failure.
	ErrTransportFailed = errors.New("mail: transport failed")

	// ErrNoRecipient is returned when a message has nobody to go to.
	ErrNoRecipient = errors.New("mail: no recipients")
)

// DefaultSendTimeout bounds one delivery attempt.
const DefaultSendTimeout = 30 * time.Second

// Email is a message ready for delivery.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers a single Email. Implementations make exactly one attempt.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Dispatcher sends notifications from a fixed account through a Sender.
type Dispatcher struct {
	sender  Sender
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher sending as from.
func NewDispatcher(sender Sender, from string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		sender:  sender,
		from:    from,
		timeout: timeout,
		logger:  logger,
	}
}

// Send delivers one message to all recipients. The attempt is detached from
// ctx cancellation so a disconnecting client does not abort it; it is bounded
// by the dispatcher timeout instead. Returned errors wrap either
// ErrAuthenticationFailed or ErrTransportFailed.
func (d *Dispatcher) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: %w", ErrTransportFailed, ErrNoRecipient)
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	email := &Email{
		From:    d.from,
		To:      recipients,
		Subject: subject,
		HTML:    body,
	}

	start := time.Now()
	err := d.sender.Send(sendCtx, email)
	if err != nil {
		if !errors.Is(err, ErrAuthenticationFailed) && !errors.Is(err, ErrTransportFailed) {
			err = fmt.Errorf("%w: %w", ErrTransportFailed, err)
		}
		if errors.Is(err, ErrAuthenticationFailed) {
			d.logger.Error("mail relay authentication failed", slog.String("error", err.Error()))
		} else {
			d.logger.Error("email send error",
				slog.Any("recipients", recipients),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	d.logger.Info("email sent",
		slog.Any("recipients", recipients),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
