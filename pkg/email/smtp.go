package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender relays through an SMTP server. STARTTLS is used when the
// server offers it; PLAIN auth is used when credentials are configured.
type SMTPSender struct {
	addr     string
	host     string
	auth     smtp.Auth
	from     string
	fromAddr string
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: EMAIL_HOST is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.From) {
		return nil, fmt.Errorf("%w: EMAIL_FROM must be a valid email address", ErrInvalidConfig)
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(port)),
		host:     cfg.SMTPHost,
		from:     formatAddress(cfg.FromName, cfg.From),
		fromAddr: cfg.From,
	}
	if cfg.SMTPUser != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s, nil
}

// Send returns the generated Message-ID. net/smtp has no context support, so
// cancellation only abandons the wait; the transfer may still complete.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(s.fromAddr))
	body := s.build(id, msg, time.Now())

	errCh := make(chan error, 1)
	go func() {
		errCh <- smtp.SendMail(s.addr, s.auth, s.fromAddr, []string{msg.To}, body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return "", errors.Join(ErrFailedToSendEmail, err)
		}
		return id, nil
	case <-ctx.Done():
		return "", errors.Join(ErrFailedToSendEmail, ctx.Err())
	}
}

func (s *SMTPSender) build(id string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", s.from)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", id)
	if msg.Tag != "" {
		header("X-Tag", msg.Tag)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "base64")
	b.WriteString("\r\n")

	enc := base64.StdEncoding.EncodeToString([]byte(msg.HTML))
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc)
	b.WriteString("\r\n")
	return b.Bytes()
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 {
		return addr[i+1:]
	}
	return "localhost"
}
