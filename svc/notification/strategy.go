package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cernol/formintake/pkg/async"
	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/svc/submission"
)

// Strategy selects how contact notifications leave the request path.
type Strategy string

const (
	StrategyInline Strategy = "inline"
	StrategyQueue  Strategy = "queue"
)

// ContactEmailTaskName is the queue task that delivers contact notifications.
const ContactEmailTaskName = "send-contact-email"

// ContactEmailTask is the queued payload; the contact itself is reloaded
// from the store when the task runs.
type ContactEmailTask struct {
	ContactID string `json:"contactId"`
}

// ContactNotifier sends the notifications of a stored contact.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, c submission.Contact) Report
}

// InlineScheduler delivers contact notifications on a bounded in-process
// pool, detached from the request that scheduled them.
type InlineScheduler struct {
	notifier ContactNotifier
	contacts submission.ContactStore
	pool     *async.Pool
	timeout  time.Duration
	log      *slog.Logger
}

func NewInlineScheduler(notifier ContactNotifier, contacts submission.ContactStore, pool *async.Pool, timeout time.Duration, log *slog.Logger) *InlineScheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &InlineScheduler{
		notifier: notifier,
		contacts: contacts,
		pool:     pool,
		timeout:  timeout,
		log:      log.With(logger.Component("notification.inline")),
	}
}

// ScheduleContact implements submission.ContactScheduler. When the pool
// rejects the task the contact is marked failed right away.
func (s *InlineScheduler) ScheduleContact(ctx context.Context, c submission.Contact) error {
	err := s.pool.Submit(func(ctx context.Context) error {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		status := submission.EmailSent
		if err := s.notifier.NotifyContact(ctx, c).Err(); err != nil {
			status = submission.EmailFailed
		}
		setStatus(context.WithoutCancel(ctx), s.contacts, c.ID, status, s.log)
		return nil
	})
	if err != nil {
		setStatus(context.WithoutCancel(ctx), s.contacts, c.ID, submission.EmailFailed, s.log)
		return fmt.Errorf("schedule contact %s: %w", c.ID, err)
	}
	return nil
}

// Shutdown waits for in-flight deliveries.
func (s *InlineScheduler) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}

// QueueScheduler defers contact notifications to the task queue, where they
// are retried with backoff.
type QueueScheduler struct {
	enqueuer    *queue.Enqueuer
	contacts    submission.ContactStore
	maxAttempts int
	log         *slog.Logger
}

func NewQueueScheduler(enqueuer *queue.Enqueuer, contacts submission.ContactStore, maxAttempts int, log *slog.Logger) *QueueScheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &QueueScheduler{
		enqueuer:    enqueuer,
		contacts:    contacts,
		maxAttempts: maxAttempts,
		log:         log.With(logger.Component("notification.queue")),
	}
}

// ScheduleContact implements submission.ContactScheduler. An enqueue
// failure marks the contact failed.
func (s *QueueScheduler) ScheduleContact(ctx context.Context, c submission.Contact) error {
	task, err := s.enqueuer.Enqueue(ctx, ContactEmailTask{ContactID: c.ID},
		queue.WithTaskName(ContactEmailTaskName),
		queue.WithMaxAttempts(s.maxAttempts),
	)
	if err != nil {
		setStatus(context.WithoutCancel(ctx), s.contacts, c.ID, submission.EmailFailed, s.log)
		return fmt.Errorf("enqueue contact %s: %w", c.ID, err)
	}

	s.log.DebugContext(ctx, "contact notification queued",
		logger.SubmissionID(c.ID),
		logger.TaskID(task.ID.String()))
	return nil
}

// ContactEmailHandler runs queued contact notifications. A failed delivery
// is returned to the worker for retry; the contact is marked failed only
// when the last attempt fails.
func ContactEmailHandler(notifier ContactNotifier, contacts submission.ContactStore, log *slog.Logger) queue.Handler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("notification.queue"))

	return queue.NewTaskHandler(ContactEmailTaskName, func(ctx context.Context, p ContactEmailTask) error {
		c, err := contacts.GetContact(ctx, p.ContactID)
		if errors.Is(err, submission.ErrNotFound) {
			log.WarnContext(ctx, "queued contact no longer exists", logger.SubmissionID(p.ContactID))
			return nil
		}
		if err != nil {
			return err
		}
		if c.EmailStatus != submission.EmailPending {
			return nil
		}

		err = notifier.NotifyContact(ctx, c).Err()
		if err == nil {
			setStatus(ctx, contacts, c.ID, submission.EmailSent, log)
			return nil
		}

		if info, ok := queue.TaskInfoFromContext(ctx); !ok || info.Final() {
			setStatus(ctx, contacts, c.ID, submission.EmailFailed, log)
		}
		return err
	})
}

// setStatus records the delivery outcome. Failures are logged only.
func setStatus(ctx context.Context, contacts submission.ContactStore, id string, status submission.EmailStatus, log *slog.Logger) {
	err := contacts.UpdateContactEmailStatus(ctx, id, status)
	switch {
	case err == nil:
		log.InfoContext(ctx, "contact email status updated", logger.SubmissionID(id), slog.String("email_status", string(status)))
	case errors.Is(err, submission.ErrStatusTransition):
		log.WarnContext(ctx, "contact email status already settled", logger.SubmissionID(id), slog.String("email_status", string(status)))
	default:
		log.ErrorContext(ctx, "failed to update contact email status", logger.SubmissionID(id), logger.Error(err))
	}
}
