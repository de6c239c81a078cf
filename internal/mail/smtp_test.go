package mail

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/require"
)

// relay is an in-process SMTP server recording what it receives.
type relay struct {
	username string
	password string
	reject   map[string]bool

	mu       sync.Mutex
	messages []received
}

type received struct {
	from   string
	to     []string
	data   string
	secure bool
}

func (r *relay) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &relaySession{relay: r, conn: c}, nil
}

func (r *relay) Messages() []received {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]received(nil), r.messages...)
}

type relaySession struct {
	relay  *relay
	conn   *smtp.Conn
	authed bool
	from   string
	to     []string
}

func (s *relaySession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *relaySession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.relay.username || password != s.relay.password {
			return smtp.ErrAuthFailed
		}
		s.authed = true
		return nil
	}), nil
}

func (s *relaySession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed {
		return smtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *relaySession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if s.relay.reject[to] {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "mailbox unavailable",
		}
	}
	s.to = append(s.to, to)
	return nil
}

func (s *relaySession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, overTLS := s.conn.TLSConnectionState()
	s.relay.mu.Lock()
	s.relay.messages = append(s.relay.messages, received{
		from:   s.from,
		to:     s.to,
		data:   strings.ReplaceAll(string(b), "\r\n", "\n"),
		secure: overTLS,
	})
	s.relay.mu.Unlock()
	return nil
}

func (s *relaySession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *relaySession) Logout() error {
	return nil
}

func startRelay(t *testing.T, r *relay) string {
	t.Helper()
	return startRelayTLS(t, r, nil)
}

// startRelayTLS starts a relay offering STARTTLS when tlsConfig is set.
func startRelayTLS(t *testing.T, r *relay, tlsConfig *tls.Config) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := smtp.NewServer(r)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = tlsConfig == nil
	srv.TLSConfig = tlsConfig
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second

	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	return ln.Addr().String()
}

// selfSignedCert returns a certificate for 127.0.0.1 and a pool trusting it.
func selfSignedCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "relay.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(leaf)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}

func newTestRelay() *relay {
	return &relay{
		username: "forms@h190k.com",
		password: "app-password",
		reject:   map[string]bool{},
	}
}

func testEmail() *Email {
	return &Email{
		From:    "forms@h190k.com",
		To:      []string{"newsletter@h190k.com", "info@h190k.com"},
		Subject: "New Newsletter Subscriber",
		HTML:    "<h2>New Newsletter Signup</h2>\n<p><strong>Name:</strong> Ann</p>\n",
	}
}

func TestSMTPSenderSend(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	addr := startRelay(t, r)

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password})
	require.NoError(t, s.Send(context.Background(), testEmail()))

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "forms@h190k.com", msgs[0].from)
	require.Equal(t, []string{"newsletter@h190k.com", "info@h190k.com"}, msgs[0].to)
	require.Contains(t, msgs[0].data, "Subject: New Newsletter Subscriber\n")
	require.Contains(t, msgs[0].data, "To: newsletter@h190k.com, info@h190k.com\n")
	require.Contains(t, msgs[0].data, "Content-Type: text/html")
	require.Contains(t, msgs[0].data, "New Newsletter Signup")
}

func TestSMTPSenderAuthRejected(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	addr := startRelay(t, r)

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: "wrong"})
	err := s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.NotContains(t, err.Error(), "wrong")
	require.Empty(t, r.Messages())
}

func TestSMTPSenderRecipientRejected(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	r.reject["info@h190k.com"] = true
	addr := startRelay(t, r)

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password})
	err := s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrTransportFailed)
	require.NotErrorIs(t, err, ErrAuthenticationFailed)
	require.Empty(t, r.Messages())
}

func TestSMTPSenderRequiresTLS(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	addr := startRelay(t, r)

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password, RequireTLS: true})
	err := s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrTransportFailed)
	require.Contains(t, err.Error(), "STARTTLS")
}

func TestSMTPSenderSendOverSTARTTLS(t *testing.T) {
	t.Parallel()

	cert, roots := selfSignedCert(t)
	r := newTestRelay()
	addr := startRelayTLS(t, r, &tls.Config{Certificates: []tls.Certificate{cert}})

	s := NewSMTPSender(SMTPConfig{
		Addr:       addr,
		Username:   r.username,
		Password:   r.password,
		RequireTLS: true,
		TLSConfig:  &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12},
	})
	require.NoError(t, s.Send(context.Background(), testEmail()))

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	require.True(t, msgs[0].secure)
	require.Equal(t, []string{"newsletter@h190k.com", "info@h190k.com"}, msgs[0].to)
	require.Contains(t, msgs[0].data, "Subject: New Newsletter Subscriber\n")

	require.NoError(t, s.Check(context.Background()))
}

func TestSMTPSenderUntrustedCertificate(t *testing.T) {
	t.Parallel()

	cert, _ := selfSignedCert(t)
	r := newTestRelay()
	addr := startRelayTLS(t, r, &tls.Config{Certificates: []tls.Certificate{cert}})

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password, RequireTLS: true})
	err := s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrTransportFailed)
	require.NotErrorIs(t, err, ErrAuthenticationFailed)
	require.Empty(t, r.Messages())
}

func TestSMTPSenderPlaintextWhenTLSOptional(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	addr := startRelay(t, r)

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password})
	require.NoError(t, s.Send(context.Background(), testEmail()))

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	require.False(t, msgs[0].secure)
}

func TestSMTPSenderUnreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewSMTPSender(SMTPConfig{Addr: addr, Username: "u", Password: "p"})
	err = s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrTransportFailed)
}

func TestSMTPSenderCheck(t *testing.T) {
	t.Parallel()

	r := newTestRelay()
	addr := startRelay(t, r)

	ok := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: r.password})
	require.NoError(t, ok.Check(context.Background()))

	bad := NewSMTPSender(SMTPConfig{Addr: addr, Username: r.username, Password: "nope"})
	require.ErrorIs(t, bad.Check(context.Background()), ErrAuthenticationFailed)

	require.Empty(t, r.Messages())
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	email := testEmail()
	email.Subject = "Support Ticket - HIGH\r\nBcc: victim@example.com"
	email.HTML = "<p>café</p>"

	raw, err := buildMessage(email, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	msg := string(raw)
	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)

	require.NotContains(t, headers, "\r\nBcc:")
	require.Contains(t, headers, "Subject: Support Ticket - HIGH Bcc: victim@example.com")
	require.Contains(t, headers, "Date: Fri, 02 Jan 2026 03:04:05 +0000")
	require.Contains(t, headers, "Message-ID: <")
	require.Contains(t, headers, "@h190k.com>")
	require.Contains(t, headers, "Content-Transfer-Encoding: quoted-printable")
	require.Contains(t, body, "caf=C3=A9")

	_, err = buildMessage(&Email{From: "not an address", To: []string{"a@b.c"}}, time.Now())
	require.Error(t, err)
}

func TestOneLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a b c", oneLine(" a\r\nb\n\tc "))
}
