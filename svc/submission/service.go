// Package submission accepts contact and quote form submissions: it
// sanitizes and checks raw input, persists it, and hands the stored record
// to notification delivery.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cernol/formintake/pkg/logger"
)

// QuoteNotifier sends quote emails synchronously. It returns the joined
// failures of independent sends.
type QuoteNotifier interface {
	NotifyQuote(ctx context.Context, q Quote) error
}

// ContactScheduler arranges background notification for a stored contact,
// including the final emailStatus update.
type ContactScheduler interface {
	ScheduleContact(ctx context.Context, c Contact) error
}

// Service orchestrates submissions.
type Service struct {
	contacts  ContactStore
	quotes    QuoteStore
	notifier  QuoteNotifier
	scheduler ContactScheduler
	log       *slog.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, used for elapsed time reporting.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(contacts ContactStore, quotes QuoteStore, notifier QuoteNotifier, scheduler ContactScheduler, opts ...ServiceOption) *Service {
	s := &Service{
		contacts:  contacts,
		quotes:    quotes,
		notifier:  notifier,
		scheduler: scheduler,
		log:       logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("submission"))
	return s
}

// SubmitContact stores a contact with emailStatus pending and schedules its
// notifications. It returns as soon as the record is stored; delivery
// outcome never affects the result.
func (s *Service) SubmitContact(ctx context.Context, raw map[string]any) (Receipt, error) {
	start := s.now()

	c := SanitizeContact(raw)
	if err := CheckContact(c); err != nil {
		return Receipt{}, err
	}

	if err := s.contacts.CreateContact(ctx, &c); err != nil {
		s.logStoreError(ctx, "contact", err)
		return Receipt{}, err
	}
	s.log.InfoContext(ctx, "contact stored", logger.SubmissionID(c.ID), slog.String("service", c.Service))

	if err := s.scheduler.ScheduleContact(ctx, c); err != nil {
		s.log.ErrorContext(ctx, "contact notification not scheduled", logger.SubmissionID(c.ID), logger.Error(err))
	}

	return Receipt{ID: c.ID, Elapsed: s.now().Sub(start)}, nil
}

// SubmitQuote stores a quote and sends both notifications before
// returning. Send failures are logged and do not fail the submission.
func (s *Service) SubmitQuote(ctx context.Context, raw map[string]any) (Receipt, error) {
	start := s.now()

	q := SanitizeQuote(raw)
	if err := CheckQuote(q); err != nil {
		return Receipt{}, err
	}

	if err := s.quotes.CreateQuote(ctx, &q); err != nil {
		s.logStoreError(ctx, "quote", err)
		return Receipt{}, err
	}
	s.log.InfoContext(ctx, "quote stored", logger.SubmissionID(q.ID), slog.String("company", q.Company))

	// Client disconnects must not abort delivery of an accepted quote.
	if err := s.notifier.NotifyQuote(context.WithoutCancel(ctx), q); err != nil {
		s.log.WarnContext(ctx, "quote notifications incomplete", logger.SubmissionID(q.ID), logger.Error(err))
	}

	return Receipt{ID: q.ID, Elapsed: s.now().Sub(start)}, nil
}

// ListQuotes returns stored quotes newest first.
func (s *Service) ListQuotes(ctx context.Context, opts ListOptions) (QuotePage, error) {
	quotes, total, err := s.quotes.ListQuotes(ctx, opts)
	if err != nil {
		return QuotePage{}, err
	}
	return QuotePage{Quotes: quotes, Total: total}, nil
}

func (s *Service) logStoreError(ctx context.Context, kind string, err error) {
	level := slog.LevelError
	if errors.Is(err, ErrSchemaViolation) {
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, "submission not stored", logger.SubmissionKind(kind), logger.Error(err))
}
