package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps queue state in Redis.
//
// Layout per queue q under prefix p:
//
//	p:q:waiting    ZSET  task id scored by run-at (unix ms)
//	p:q:active     ZSET  task id scored by lock deadline (unix ms)
//	p:q:completed  STRING counter
//	p:q:failed     LIST  JSON snapshots of failed tasks, newest first
//	p:task:<id>    HASH  task fields
//
// Claiming runs as a single Lua script that moves the id from the waiting
// set to the active set and locks the hash, so two workers never run the
// same task and a crash cannot leave a task in neither set.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStorage creates a storage on top of an existing client.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "queue"
	}
	return &RedisStorage{client: client, prefix: prefix, now: time.Now}
}

func (rs *RedisStorage) waitingKey(queue string) string   { return rs.prefix + ":" + queue + ":waiting" }
func (rs *RedisStorage) activeKey(queue string) string    { return rs.prefix + ":" + queue + ":active" }
func (rs *RedisStorage) completedKey(queue string) string { return rs.prefix + ":" + queue + ":completed" }
func (rs *RedisStorage) failedKey(queue string) string    { return rs.prefix + ":" + queue + ":failed" }
func (rs *RedisStorage) taskKey(id uuid.UUID) string      { return rs.prefix + ":task:" + id.String() }

// CreateTask implements EnqueuerRepository.
func (rs *RedisStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rs.taskKey(task.ID), taskToHash(task))
		pipe.ZAdd(ctx, rs.waitingKey(task.Queue), redis.Z{
			Score:  float64(task.RunAt.UnixMilli()),
			Member: task.ID.String(),
		})
		return nil
	})
	return err
}

// claimScript moves the earliest due id from the waiting set to the active
// set and locks its hash in one step.
//
// KEYS[1] waiting set, KEYS[2] active set.
// ARGV[1] now (ms), ARGV[2] lock deadline (ms), ARGV[3] task key prefix,
// ARGV[4] processing status.
//
// Returns nil when nothing is due and an empty array for an id whose hash
// is gone.
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
	return false
end
local id = ids[1]
redis.call('ZREM', KEYS[1], id)
local key = ARGV[3] .. id
if redis.call('EXISTS', key) == 0 then
	return {}
end
redis.call('HINCRBY', key, 'attempts', 1)
redis.call('HSET', key, 'status', ARGV[4], 'locked_until', ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[2], id)
return redis.call('HGETALL', key)
`)

// orphans dropped per queue before moving on
const maxClaimSkips = 5

// ClaimTask implements WorkerRepository.
func (rs *RedisStorage) ClaimTask(ctx context.Context, queues []string, lockDuration time.Duration) (*Task, error) {
	now := rs.now()
	until := now.Add(lockDuration)
	for _, queue := range queues {
		keys := []string{rs.waitingKey(queue), rs.activeKey(queue)}
		for range maxClaimSkips {
			reply, err := claimScript.Run(ctx, rs.client, keys,
				now.UnixMilli(), until.UnixMilli(), rs.prefix+":task:", string(TaskStatusProcessing),
			).Slice()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("claim task in %q: %w", queue, err)
			}
			if len(reply) == 0 {
				continue
			}
			return taskFromHash(replyToHash(reply))
		}
	}

	return nil, ErrNoTaskToClaim
}

// replyToHash turns a flat HGETALL script reply into a field map.
func replyToHash(reply []any) map[string]string {
	h := make(map[string]string, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		k, _ := reply[i].(string)
		v, _ := reply[i+1].(string)
		h[k] = v
	}
	return h
}

// CompleteTask implements WorkerRepository.
func (rs *RedisStorage) CompleteTask(ctx context.Context, task *Task) error {
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, rs.activeKey(task.Queue), task.ID.String())
		pipe.Del(ctx, rs.taskKey(task.ID))
		pipe.Incr(ctx, rs.completedKey(task.Queue))
		return nil
	})
	return err
}

// RetryTask implements WorkerRepository.
func (rs *RedisStorage) RetryTask(ctx context.Context, task *Task, runAt time.Time, errMsg string) error {
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, rs.activeKey(task.Queue), task.ID.String())
		pipe.HSet(ctx, rs.taskKey(task.ID),
			"status", string(TaskStatusPending),
			"run_at", strconv.FormatInt(runAt.UnixMilli(), 10),
			"last_error", errMsg)
		pipe.HDel(ctx, rs.taskKey(task.ID), "locked_until")
		pipe.ZAdd(ctx, rs.waitingKey(task.Queue), redis.Z{Score: float64(runAt.UnixMilli()), Member: task.ID.String()})
		return nil
	})
	return err
}

// FailTask implements WorkerRepository.
func (rs *RedisStorage) FailTask(ctx context.Context, task *Task, errMsg string) error {
	snapshot := *task
	snapshot.Status = TaskStatusFailed
	snapshot.LockedUntil = nil
	snapshot.LastError = errMsg

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Join(ErrPayloadMarshal, err)
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, rs.activeKey(task.Queue), task.ID.String())
		pipe.Del(ctx, rs.taskKey(task.ID))
		pipe.LPush(ctx, rs.failedKey(task.Queue), data)
		pipe.LTrim(ctx, rs.failedKey(task.Queue), 0, failedHistory-1)
		return nil
	})
	return err
}

// RequeueExpired implements WorkerRepository.
func (rs *RedisStorage) RequeueExpired(ctx context.Context, queues []string) (int, error) {
	now := rs.now()
	n := 0
	for _, queue := range queues {
		ids, err := rs.client.ZRangeByScore(ctx, rs.activeKey(queue), &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(now.UnixMilli(), 10),
		}).Result()
		if err != nil {
			return n, fmt.Errorf("list expired tasks of %q: %w", queue, err)
		}

		for _, id := range ids {
			removed, err := rs.client.ZRem(ctx, rs.activeKey(queue), id).Result()
			if err != nil {
				return n, err
			}
			if removed == 0 {
				continue
			}

			taskID, err := uuid.Parse(id)
			if err != nil {
				continue
			}
			fields, err := rs.client.HGetAll(ctx, rs.taskKey(taskID)).Result()
			if err != nil {
				return n, err
			}
			if len(fields) == 0 {
				continue
			}
			task, err := taskFromHash(fields)
			if err != nil {
				return n, err
			}

			n++
			if task.Exhausted() {
				if err := rs.FailTask(ctx, task, "lock expired"); err != nil {
					return n, err
				}
				continue
			}
			if err := rs.RetryTask(ctx, task, now, task.LastError); err != nil {
				return n, err
			}
		}
	}

	return n, nil
}

// Stats implements StatsRepository.
func (rs *RedisStorage) Stats(ctx context.Context, queue string) (Stats, error) {
	var waiting, active, failed *redis.IntCmd
	var completed *redis.StringCmd

	_, err := rs.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		waiting = pipe.ZCard(ctx, rs.waitingKey(queue))
		active = pipe.ZCard(ctx, rs.activeKey(queue))
		completed = pipe.Get(ctx, rs.completedKey(queue))
		failed = pipe.LLen(ctx, rs.failedKey(queue))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Stats{}, err
	}

	s := Stats{
		Waiting: waiting.Val(),
		Active:  active.Val(),
		Failed:  failed.Val(),
	}
	if v, err := completed.Int64(); err == nil {
		s.Completed = v
	}

	return s, nil
}

func taskToHash(t *Task) map[string]any {
	return map[string]any{
		"id":           t.ID.String(),
		"queue":        t.Queue,
		"name":         t.Name,
		"payload":      string(t.Payload),
		"status":       string(t.Status),
		"attempts":     t.Attempts,
		"max_attempts": t.MaxAttempts,
		"run_at":       strconv.FormatInt(t.RunAt.UnixMilli(), 10),
		"last_error":   t.LastError,
		"created_at":   strconv.FormatInt(t.CreatedAt.UnixMilli(), 10),
	}
}

func taskFromHash(h map[string]string) (*Task, error) {
	id, err := uuid.Parse(h["id"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad id %q", ErrTaskNotFound, h["id"])
	}

	attempts, _ := strconv.Atoi(h["attempts"])
	maxAttempts, _ := strconv.Atoi(h["max_attempts"])

	t := &Task{
		ID:          id,
		Queue:       h["queue"],
		Name:        h["name"],
		Payload:     json.RawMessage(h["payload"]),
		Status:      TaskStatus(h["status"]),
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		RunAt:       parseMillis(h["run_at"]),
		LastError:   h["last_error"],
		CreatedAt:   parseMillis(h["created_at"]),
	}
	if v, ok := h["locked_until"]; ok {
		until := parseMillis(v)
		t.LockedUntil = &until
	}

	return t, nil
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
