// Command formintake serves the contact and quote form API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cernol/formintake/modules/intake"
	"github.com/cernol/formintake/pkg/async"
	"github.com/cernol/formintake/pkg/clientip"
	"github.com/cernol/formintake/pkg/email"
	"github.com/cernol/formintake/pkg/environment"
	"github.com/cernol/formintake/pkg/httpserver"
	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/pkg/ratelimit"
	"github.com/cernol/formintake/pkg/redis"
	"github.com/cernol/formintake/pkg/requestid"
	"github.com/cernol/formintake/svc/notification"
	"github.com/cernol/formintake/svc/submission"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	env := environment.Parse(cfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, cfg.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, env, log); err != nil {
		log.Error("formintake stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, env environment.Environment, log *slog.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	sender, provider, err := email.New(cfg.Email, env.IsProduction(), log.With(logger.Component("email")))
	emailReady := err == nil && cfg.Email.CredentialsConfigured(provider)
	if err != nil {
		log.Warn("email sender not configured; sends will fail", slog.String("provider", string(provider)), logger.Error(err))
		sender = unconfiguredSender{err: err}
	}

	dispatcher := notification.NewDispatcher(notification.Config{
		From:          cfg.Email.From,
		AdminEmail:    cfg.AdminEmail,
		AdminPanelURL: cfg.AdminPanelURL,
		CompanyName:   cfg.Email.FromName,
		Location:      cfg.location,
	}, sender, notification.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)

	var (
		scheduler  submission.ContactScheduler
		queueStats intake.QueueStats
		drain      func(context.Context) error
	)
	switch cfg.Dispatch {
	case dispatchQueue:
		qs, err := startQueue(ctx, cfg, st.store, dispatcher, log)
		if err != nil {
			return err
		}
		defer qs.close(log)

		g.Go(qs.worker.Run(gctx))
		scheduler = qs.scheduler
		ping := redis.Healthcheck(qs.client)
		queueStats = func(ctx context.Context) (queue.Stats, error) {
			if err := ping(ctx); err != nil {
				return queue.Stats{}, err
			}
			return qs.storage.Stats(ctx, queue.DefaultQueueName)
		}

	default:
		pool := async.NewPool(cfg.DispatchWorkers, cfg.DispatchWorkers*20, log)
		inline := notification.NewInlineScheduler(dispatcher, st.store, pool, cfg.DispatchTimeout, log)
		scheduler = inline
		drain = inline.Shutdown
	}

	svc := submission.NewService(st.store, st.store, dispatcher.QuoteNotifier(), scheduler, submission.WithLogger(log))

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled() {
		tb, err := ratelimit.NewTokenBucket(cfg.RateLimit)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		limiter = tb
	}

	router := intake.Router(intake.Options{
		Submitter: svc,
		Store:     st.store,
		Mailer:    dispatcher,
		Queue:     queueStats,
		Limiter:   limiter,
		Email: intake.EmailInfo{
			Provider:         string(provider),
			FromConfigured:   cfg.Email.From != "",
			AdminConfigured:  cfg.AdminEmail != "",
			APIKeyConfigured: emailReady,
		},
		Environment:    env,
		Version:        cfg.Version,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AdminTokenHash: cfg.AdminTokenHash,
		Logger:         log,
	})

	log.Info("formintake starting",
		slog.String("environment", env.String()),
		slog.String("version", cfg.Version),
		slog.String("store", cfg.StoreDriver),
		slog.String("email_provider", string(provider)),
		slog.Bool("email_from_configured", cfg.Email.From != ""),
		slog.Bool("admin_email_configured", cfg.AdminEmail != ""),
		slog.String("dispatch", cfg.Dispatch),
		slog.Bool("rate_limit", limiter != nil))

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	g.Go(func() error { return srv.Run(gctx, router) })

	err = g.Wait()

	if drain != nil {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if derr := drain(dctx); derr != nil {
			log.Warn("pending contact emails not drained", logger.Error(derr))
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// unconfiguredSender stands in when the selected provider is missing
// credentials; health reports the email service as misconfigured.
type unconfiguredSender struct{ err error }

func (s unconfiguredSender) Send(context.Context, email.Message) (string, error) {
	return "", s.err
}
