// Package notification renders and sends the emails that follow a form
// submission, and decides whether contact emails go out inline or through
// the task queue.
package notification

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/cernol/formintake/pkg/async"
	"github.com/cernol/formintake/pkg/email"
	emailtpl "github.com/cernol/formintake/pkg/email/templates"
	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/sanitizer"
	"github.com/cernol/formintake/svc/submission"
)

var ErrAdminNotConfigured = errors.New("notification: admin email is not configured")

// Kind names one of the notification emails.
type Kind string

const (
	KindContactConfirmation Kind = "contact-confirmation"
	KindContactAdmin        Kind = "contact-admin"
	KindQuoteConfirmation   Kind = "quote-confirmation"
	KindQuoteAdmin          Kind = "quote-admin"
)

// Config holds the addresses and branding used in every email.
type Config struct {
	From          string
	AdminEmail    string
	AdminPanelURL string
	CompanyName   string
	// PhoneRegion is the default region for phone formatting.
	PhoneRegion string
	Location    *time.Location
}

// Result is the outcome of one send.
type Result struct {
	Kind      Kind
	Recipient string
	MessageID string
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

// Report collects the results of a submission's notifications.
type Report struct {
	Results []Result
}

// Err joins the failures, or returns nil when every send succeeded.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s to %s: %w", res.Kind, res.Recipient, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Dispatcher renders notification emails and hands them to an email.Sender.
type Dispatcher struct {
	cfg    Config
	sender email.Sender
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(cfg Config, sender email.Sender, opts ...Option) *Dispatcher {
	if cfg.CompanyName == "" {
		cfg.CompanyName = "Cernol Chemicals"
	}
	if cfg.AdminPanelURL == "" {
		cfg.AdminPanelURL = "#"
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "ZW"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	d := &Dispatcher{
		cfg:    cfg,
		sender: sender,
		log:    logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With(logger.Component("notification"))
	return d
}

// ContactConfirmation thanks the submitter.
func (d *Dispatcher) ContactConfirmation(ctx context.Context, c submission.Contact) Result {
	subject := plain(c.Subject)
	if subject == "" {
		subject = ServiceName(c.Service)
	}
	return d.send(ctx, KindContactConfirmation, c.Email, d.cfg.AdminEmail,
		fmt.Sprintf("Thank you for contacting %s - %s", d.cfg.CompanyName, subject),
		contactConfirmationTemplate, d.contactView(c))
}

// ContactAdmin tells the admin about a new contact.
func (d *Dispatcher) ContactAdmin(ctx context.Context, c submission.Contact) Result {
	subject := plain(c.Subject)
	if subject == "" {
		subject = "No subject"
	}
	return d.sendAdmin(ctx, KindContactAdmin, c.Email,
		"New Contact Form Submission - "+subject,
		contactAdminTemplate, d.contactView(c))
}

// QuoteConfirmation acknowledges a quote request.
func (d *Dispatcher) QuoteConfirmation(ctx context.Context, q submission.Quote) Result {
	return d.send(ctx, KindQuoteConfirmation, q.Email, d.cfg.AdminEmail,
		"Quote Request Received - "+d.cfg.CompanyName,
		quoteConfirmationTemplate, d.quoteView(q))
}

// QuoteAdmin tells the admin about a new quote request.
func (d *Dispatcher) QuoteAdmin(ctx context.Context, q submission.Quote) Result {
	return d.sendAdmin(ctx, KindQuoteAdmin, q.Email,
		"New Quote Request - "+plain(q.Company),
		quoteAdminTemplate, d.quoteView(q))
}

// NotifyContact sends both contact emails concurrently. One failing never
// stops the other.
func (d *Dispatcher) NotifyContact(ctx context.Context, c submission.Contact) Report {
	return d.settle(ctx, "contact", c.ID,
		pending{KindContactConfirmation, c.Email, func(ctx context.Context) Result { return d.ContactConfirmation(ctx, c) }},
		pending{KindContactAdmin, d.cfg.AdminEmail, func(ctx context.Context) Result { return d.ContactAdmin(ctx, c) }},
	)
}

// NotifyQuote sends both quote emails concurrently.
func (d *Dispatcher) NotifyQuote(ctx context.Context, q submission.Quote) Report {
	return d.settle(ctx, "quote", q.ID,
		pending{KindQuoteConfirmation, q.Email, func(ctx context.Context) Result { return d.QuoteConfirmation(ctx, q) }},
		pending{KindQuoteAdmin, d.cfg.AdminEmail, func(ctx context.Context) Result { return d.QuoteAdmin(ctx, q) }},
	)
}

// SendTest sends a contact confirmation for a made-up submission to the admin address.
func (d *Dispatcher) SendTest(ctx context.Context) Result {
	if d.cfg.AdminEmail == "" {
		return Result{Kind: KindContactConfirmation, Err: ErrAdminNotConfigured}
	}
	now := d.now().UTC()
	return d.ContactConfirmation(ctx, submission.Contact{
		ID:          "test",
		FirstName:   "Test",
		LastName:    "User",
		Email:       d.cfg.AdminEmail,
		Subject:     "Test Email",
		Message:     "This is a test email to verify the email service is working correctly.",
		Service:     "general-inquiry",
		EmailStatus: submission.EmailPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// QuoteNotifier adapts the dispatcher to submission.QuoteNotifier.
func (d *Dispatcher) QuoteNotifier() submission.QuoteNotifier {
	return quoteNotifier{d}
}

type quoteNotifier struct{ d *Dispatcher }

func (n quoteNotifier) NotifyQuote(ctx context.Context, q submission.Quote) error {
	return n.d.NotifyQuote(ctx, q).Err()
}

type pending struct {
	kind      Kind
	recipient string
	run       func(context.Context) Result
}

func (d *Dispatcher) settle(ctx context.Context, kind, id string, jobs ...pending) Report {
	futures := make([]*async.Future[Result], len(jobs))
	for i, job := range jobs {
		futures[i] = async.Go(ctx, func(ctx context.Context) (Result, error) {
			res := job.run(ctx)
			return res, res.Err
		})
	}

	report := Report{Results: make([]Result, len(jobs))}
	for i, out := range async.Settle(futures...) {
		res := out.Value
		if res.Kind == "" {
			// the future never produced a result: cancelled or panicked
			res = Result{Kind: jobs[i].kind, Recipient: jobs[i].recipient, Err: out.Err}
		}
		report.Results[i] = res

		attrs := []any{
			logger.SubmissionKind(kind),
			logger.SubmissionID(id),
			slog.String("email_kind", string(res.Kind)),
			logger.Recipient(res.Recipient),
			logger.MessageID(res.MessageID),
		}
		if res.Err != nil {
			d.log.ErrorContext(ctx, "notification failed", append(attrs, logger.Error(res.Err))...)
			continue
		}
		d.log.InfoContext(ctx, "notification sent", attrs...)
	}

	return report
}

func (d *Dispatcher) sendAdmin(ctx context.Context, kind Kind, replyTo, subject string, tpl *template.Template, data any) Result {
	if d.cfg.AdminEmail == "" {
		return Result{Kind: kind, Err: ErrAdminNotConfigured}
	}
	if !submission.ValidEmail(replyTo) {
		replyTo = ""
	}
	return d.send(ctx, kind, d.cfg.AdminEmail, replyTo, subject, tpl, data)
}

func (d *Dispatcher) send(ctx context.Context, kind Kind, to, replyTo, subject string, tpl *template.Template, data any) Result {
	res := Result{Kind: kind, Recipient: to}

	html, err := emailtpl.Render(ctx, templ.FromGoHTML(tpl, data))
	if err != nil {
		res.Err = fmt.Errorf("render %s: %w", kind, err)
		return res
	}

	res.MessageID, res.Err = d.sender.Send(ctx, email.Message{
		To:      to,
		Subject: subject,
		HTML:    html,
		ReplyTo: replyTo,
		Tag:     string(kind),
	})
	return res
}

func (d *Dispatcher) contactView(c submission.Contact) contactView {
	subject := plain(c.Subject)
	if subject == "" {
		subject = "Your Inquiry"
	}
	reply := "mailto:" + plain(c.Email) + "?subject=" + url.PathEscape("Re: "+subject)

	return contactView{
		Company:      d.cfg.CompanyName,
		FirstName:    template.HTML(c.FirstName),
		LastName:     template.HTML(c.LastName),
		Email:        template.HTML(c.Email),
		Phone:        FormatPhone(c.Phone, d.cfg.PhoneRegion),
		Organisation: template.HTML(c.Company),
		Subject:      template.HTML(c.Subject),
		Inquiry:      ServiceName(c.Service),
		Message:      paragraphs(c.Message),
		Date:         formatDate(d.submitted(c.CreatedAt), d.cfg.Location),
		Year:         d.now().In(d.cfg.Location).Year(),
		ReplyURL:     template.URL(reply),
		AdminURL:     template.URL(d.cfg.AdminPanelURL),
	}
}

func (d *Dispatcher) quoteView(q submission.Quote) quoteView {
	return quoteView{
		Company:      d.cfg.CompanyName,
		FirstName:    template.HTML(q.FirstName),
		LastName:     template.HTML(q.LastName),
		Email:        template.HTML(q.Email),
		Phone:        FormatPhone(q.Phone, d.cfg.PhoneRegion),
		Organisation: template.HTML(q.Company),
		Industry:     IndustryName(q.Industry),
		Address:      template.HTML(q.Address),
		Services:     ServiceList(q.Services),
		Budget:       BudgetName(q.Budget),
		Timeline:     TimelineName(q.Timeline),
		Requirements: paragraphs(q.Requirements),
		Newsletter:   q.Newsletter,
		Submitted:    formatDate(d.submitted(q.CreatedAt), d.cfg.Location),
		Year:         d.now().In(d.cfg.Location).Year(),
		AdminURL:     template.URL(d.cfg.AdminPanelURL),
	}
}

func (d *Dispatcher) submitted(t time.Time) time.Time {
	if t.IsZero() {
		return d.now()
	}
	return t
}

// paragraphs turns newlines of already-escaped text into line breaks.
func paragraphs(escaped string) template.HTML {
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// plain decodes escaped text for headers and URLs.
func plain(escaped string) string {
	return sanitizer.UnescapeHTML(escaped)
}
