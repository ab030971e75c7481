// Package intake is the HTTP surface of the form-intake service: the
// contact and quote endpoints, health, the test email trigger and the admin
// quote listing, plus the middleware stack in front of them.
package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cernol/formintake/binder"
	"github.com/cernol/formintake/pkg/clientip"
	"github.com/cernol/formintake/pkg/environment"
	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/pkg/ratelimit"
	"github.com/cernol/formintake/pkg/requestid"
	"github.com/cernol/formintake/svc/notification"
	"github.com/cernol/formintake/svc/submission"
)

// Submitter is the orchestrator behind the form endpoints.
type Submitter interface {
	SubmitContact(ctx context.Context, raw map[string]any) (submission.Receipt, error)
	SubmitQuote(ctx context.Context, raw map[string]any) (submission.Receipt, error)
	ListQuotes(ctx context.Context, opts submission.ListOptions) (submission.QuotePage, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// TestMailer sends the diagnostic email of GET /api/test-email.
type TestMailer interface {
	SendTest(ctx context.Context) notification.Result
}

// QueueStats reports queue depth for health output.
type QueueStats func(ctx context.Context) (queue.Stats, error)

// EmailInfo describes the email setup for health output.
type EmailInfo struct {
	Provider         string
	FromConfigured   bool
	AdminConfigured  bool
	APIKeyConfigured bool
}

// Options configures the router. Submitter, Store and Mailer are required.
type Options struct {
	Submitter Submitter
	Store     Pinger
	Mailer    TestMailer
	// Queue is nil when contact emails are sent inline.
	Queue QueueStats
	// Limiter guards the POST endpoints; nil disables rate limiting.
	Limiter ratelimit.Limiter

	Email          EmailInfo
	Environment    environment.Environment
	Version        string
	MaxBodyBytes   int64
	AdminTokenHash string
	HealthTimeout  time.Duration
	Logger         *slog.Logger
}

type api struct {
	opts Options
	log  *slog.Logger
}

// Router builds the complete HTTP handler.
//
// Example:
//
//	srv.Run(ctx, intake.Router(intake.Options{
//		Submitter:   svc,
//		Store:       store,
//		Mailer:      dispatcher,
//		Environment: cfg.Env,
//	}))
func Router(opts Options) chi.Router {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = binder.DefaultMaxBodyBytes
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 3 * time.Second
	}
	a := &api{opts: opts, log: opts.Logger.With(logger.Component("http"))}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware,
		environment.Middleware(opts.Environment),
		a.recoverer,
		a.requestLogger,
		securityHeaders,
		cors,
	)

	r.NotFound(a.notFound)
	r.MethodNotAllowed(a.methodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(ratelimit.Middleware(opts.Limiter, ratelimit.ByClientIP,
					ratelimit.WithOnLimitReached(tooManyRequests),
					ratelimit.WithLogger(a.log)))
			}
			r.Post("/contact", a.submitContact())
			r.Post("/quote", a.submitQuote())
		})

		r.Get("/health", a.health)
		r.Get("/test-email", a.testEmail)
		r.Get("/quotes", a.listQuotes)
	})

	return r
}

func (a *api) endpoints() []string {
	out := []string{"POST /api/contact", "POST /api/quote", "GET /api/health"}
	if a.opts.AdminTokenHash != "" {
		out = append(out, "GET /api/quotes")
	}
	if !a.opts.Environment.IsProduction() {
		out = append(out, "GET /api/test-email")
	}
	return out
}
