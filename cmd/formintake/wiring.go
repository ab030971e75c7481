package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/mongo"
	"github.com/cernol/formintake/pkg/pg"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/pkg/redis"
	"github.com/cernol/formintake/svc/notification"
	"github.com/cernol/formintake/svc/submission"
	"github.com/cernol/formintake/svc/submission/mongostore"
	"github.com/cernol/formintake/svc/submission/pgstore"
)

type openedStore struct {
	store submission.Store
	close func(log *slog.Logger)
}

func openStore(ctx context.Context, cfg appConfig, log *slog.Logger) (openedStore, error) {
	switch cfg.StoreDriver {
	case storeMongo:
		db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return openedStore{}, fmt.Errorf("connect mongodb: %w", err)
		}
		s := mongostore.New(db)
		closeFn := func(log *slog.Logger) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				log.Warn("mongodb disconnect failed", logger.Error(err))
			}
		}
		if err := s.EnsureSchema(ctx); err != nil {
			closeFn(log)
			return openedStore{}, fmt.Errorf("ensure mongodb schema: %w", err)
		}
		log.Info("mongodb connected", slog.String("database", cfg.Mongo.DatabaseName()))
		return openedStore{store: s, close: closeFn}, nil

	case storePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return openedStore{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pgstore.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			pool.Close()
			return openedStore{}, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("postgres connected")
		return openedStore{store: pgstore.New(pool), close: func(*slog.Logger) { pool.Close() }}, nil
	}

	log.Warn("using in-memory store; submissions are lost on restart")
	return openedStore{store: submission.NewMemoryStore(), close: func(*slog.Logger) {}}, nil
}

type queueSetup struct {
	client    *goredis.Client
	storage   *queue.RedisStorage
	worker    *queue.Worker
	scheduler *notification.QueueScheduler
}

func startQueue(ctx context.Context, cfg appConfig, contacts submission.ContactStore, notifier notification.ContactNotifier, log *slog.Logger) (*queueSetup, error) {
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	storage := queue.NewRedisStorage(client, cfg.Queue.KeyPrefix)

	enqueuer, err := queue.NewEnqueuer(storage, queue.WithDefaultMaxAttempts(cfg.Queue.MaxAttempts))
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	opts := append(cfg.Queue.WorkerOptions(), queue.WithWorkerLogger(log))
	worker, err := queue.NewWorker(storage, opts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	worker.RegisterHandlers(notification.ContactEmailHandler(notifier, contacts, log))

	return &queueSetup{
		client:    client,
		storage:   storage,
		worker:    worker,
		scheduler: notification.NewQueueScheduler(enqueuer, contacts, cfg.Queue.MaxAttempts, log),
	}, nil
}

func (q *queueSetup) close(log *slog.Logger) {
	if err := q.client.Close(); err != nil {
		log.Warn("redis close failed", logger.Error(err))
	}
}
