// Package email sends transactional HTML email through one of several
// interchangeable backends: the Postmark API, a plain SMTP relay, or a
// development sender that writes messages to disk.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrFailedToSendEmail = errors.New("email: failed to send")
	ErrInvalidConfig     = errors.New("email: invalid configuration")
	ErrInvalidMessage    = errors.New("email: invalid message")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"-"`
	ReplyTo string `json:"reply_to,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

// Validate checks the fields every backend relies on.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	case !emailRegex.MatchString(m.To):
		return fmt.Errorf("%w: recipient %q is not an email address", ErrInvalidMessage, m.To)
	case strings.TrimSpace(m.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case strings.ContainsAny(m.Subject, "\r\n"):
		return fmt.Errorf("%w: subject contains line breaks", ErrInvalidMessage)
	case m.ReplyTo != "" && !emailRegex.MatchString(m.ReplyTo):
		return fmt.Errorf("%w: reply-to %q is not an email address", ErrInvalidMessage, m.ReplyTo)
	}
	return nil
}

// formatAddress renders `"Name" <addr>`, or the bare address without a name.
func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
