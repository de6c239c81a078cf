package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// buildMessage renders email as an RFC 5322 message with a quoted-printable
// HTML body.
func buildMessage(email *Email, now time.Time) ([]byte, error) {
	from, err := netmail.ParseAddress(email.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	var buf bytes.Buffer
	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", from.String())
	header("To", strings.Join(email.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", oneLine(email.Subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID(from.Address))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(email.HTML)); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}

func messageID(address string) string {
	domain := "localhost"
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		domain = address[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// oneLine collapses whitespace, CR and LF included, so user input cannot start
// a new header.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
