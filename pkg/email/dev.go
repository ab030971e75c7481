package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DevSender writes each message to dir as an .html body plus a .json
// envelope instead of delivering it.
type DevSender struct {
	dir string
	log *slog.Logger
}

func NewDevSender(dir string, log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DevSender{dir: dir, log: log}
}

type devEnvelope struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
	Message
}

func (d *DevSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir: %v", ErrFailedToSendEmail, err)
	}

	id := uuid.NewString()
	now := time.Now()
	base := filepath.Join(d.dir, fmt.Sprintf("%s_%s_%s", now.Format("2006_01_02_150405"), fileSafe(msg.Tag, msg.Subject), id[:8]))

	if err := os.WriteFile(base+".html", []byte(msg.HTML), 0o644); err != nil {
		return "", fmt.Errorf("%w: write html: %v", ErrFailedToSendEmail, err)
	}
	meta, err := json.MarshalIndent(devEnvelope{MessageID: id, Timestamp: now.Format(time.RFC3339), Message: msg}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshal envelope: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(base+".json", meta, 0o644); err != nil {
		return "", fmt.Errorf("%w: write envelope: %v", ErrFailedToSendEmail, err)
	}

	d.log.DebugContext(ctx, "email written to disk", slog.String("path", base+".html"), slog.String("to", msg.To))
	return id, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9\-_.]`)

func fileSafe(candidates ...string) string {
	for _, s := range candidates {
		s = unsafeFileChars.ReplaceAllString(strings.ReplaceAll(strings.ToLower(s), " ", "_"), "")
		if len(s) > 60 {
			s = s[:60]
		}
		if s != "" {
			return s
		}
	}
	return "email"
}
