package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// DefaultSMTPAddr is the Gmail submission relay.
const DefaultSMTPAddr = "smtp.gmail.com:587"

// SMTPConfig describes the relay and the account used to authenticate.
type SMTPConfig struct {
	Addr       string
	Username   string
	Password   string
	RequireTLS bool

	// TLSConfig overrides the STARTTLS configuration; ServerName defaults to
	// the relay host.
	TLSConfig *tls.Config
}

// SMTPSender delivers mail through an authenticated SMTP relay, one connection
// per message.
type SMTPSender struct {
	config SMTPConfig
	dialer *net.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Addr == "" {
		cfg.Addr = DefaultSMTPAddr
	}
	return &SMTPSender{
		config: cfg,
		dialer: &net.Dialer{Timeout: 10 * time.Second},
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	msg, err := buildMessage(email, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransportFailed, err)
	}

	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SendMail(email.From, email.To, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportFailed, err)
	}

	// The message is accepted once DATA completes; a failing QUIT does not
	// change that.
	_ = c.Quit()
	return nil
}

// Check connects and authenticates against the relay without sending
// anything.
func (s *SMTPSender) Check(ctx context.Context) error {
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Quit(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportFailed, err)
	}
	return nil
}

// connect dials the relay, upgrades to TLS with STARTTLS when RequireTLS is
// set and authenticates. Without RequireTLS the session stays plaintext.
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	host, _, err := net.SplitHostPort(s.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid relay address: %w", ErrTransportFailed, err)
	}

	conn, err := s.dialer.DialContext(ctx, "tcp", s.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", ErrTransportFailed, s.config.Addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	var c *smtp.Client
	if s.config.RequireTLS {
		tlsConfig := s.config.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if tlsConfig.ServerName == "" {
			tlsConfig = tlsConfig.Clone()
			tlsConfig.ServerName = host
		}
		// Closes conn on failure.
		c, err = smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: starttls: %w", ErrTransportFailed, err)
		}
	} else {
		c = smtp.NewClient(conn)
	}

	fail := func(sentinel error, step string, err error) (*smtp.Client, error) {
		c.Close()
		return nil, fmt.Errorf("%w: %s: %w", sentinel, step, err)
	}

	if s.config.Username != "" {
		auth := sasl.NewPlainClient("", s.config.Username, s.config.Password)
		if err := c.Auth(auth); err != nil {
			var smtpErr *smtp.SMTPError
			if errors.As(err, &smtpErr) {
				return fail(ErrAuthenticationFailed, "auth", err)
			}
			return fail(ErrTransportFailed, "auth", err)
		}
	}

	return c, nil
}
