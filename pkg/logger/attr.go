package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			as = append(as, slog.String(strconv.Itoa(len(as)), err.Error()))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Component(name string) slog.Attr { return slog.String("component", name) }

func Event(name string) slog.Attr { return slog.String("event", name) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

func SubmissionID(id string) slog.Attr { return slog.String("submission_id", id) }

func SubmissionKind(kind string) slog.Attr { return slog.String("submission_kind", kind) }

func Recipient(addr string) slog.Attr { return slog.String("recipient", addr) }

// MessageID records a provider message id; empty ids are dropped.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

func TaskID(id string) slog.Attr { return slog.String("task_id", id) }

func Attempt(n int) slog.Attr { return slog.Int("attempt", n) }
