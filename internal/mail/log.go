package mail

import (
	"context"
	"log/slog"
)

// LogSender records messages in the log instead of delivering them. Used for
// local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	s.logger.InfoContext(ctx, "email not sent (log transport)",
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.Int("body_bytes", len(email.HTML)),
	)
	s.logger.DebugContext(ctx, "email body", slog.String("html", email.HTML))
	return nil
}
