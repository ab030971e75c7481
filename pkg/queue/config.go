package queue

import "time"

// Config holds the worker and enqueue settings of the task queue.
type Config struct {
	PollInterval time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`
	LockTimeout  time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"2m"`
	MaxAttempts  int           `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`
	BackoffBase  time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"2s"`
	Concurrency  int           `env:"QUEUE_CONCURRENCY" envDefault:"5"`
	KeyPrefix    string        `env:"QUEUE_KEY_PREFIX" envDefault:"formintake:queue"`
}

// WorkerOptions translates the config into worker options.
func (c Config) WorkerOptions() []WorkerOption {
	return []WorkerOption{
		WithPullInterval(c.PollInterval),
		WithLockTimeout(c.LockTimeout),
		WithBackoffBase(c.BackoffBase),
		WithMaxConcurrentTasks(c.Concurrency),
	}
}
