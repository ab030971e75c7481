package queue

import "context"

// StatsRepository reports queue counters.
type StatsRepository interface {
	Stats(ctx context.Context, queue string) (Stats, error)
}
