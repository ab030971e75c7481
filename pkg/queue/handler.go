package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type (
	// Handler processes the payload of tasks with a matching name.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewTaskHandler wraps a typed function as a Handler. An empty name falls back
// to the qualified type name of T, which is what Enqueue uses without WithTaskName.
func NewTaskHandler[T any](name string, handler TaskHandlerFunc[T]) Handler {
	if name == "" {
		var payload T
		name = qualifiedStructName(payload)
	}
	return &taskHandler[T]{name: name, handler: handler}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return fmt.Errorf("decode %s payload: %w", h.name, err)
	}
	return h.handler(ctx, t)
}

// TaskInfo describes the task a handler is currently running.
type TaskInfo struct {
	ID          uuid.UUID
	Queue       string
	Name        string
	Attempt     int
	MaxAttempts int
}

// Final reports whether a failure of this attempt is the last one.
func (i TaskInfo) Final() bool {
	return i.Attempt >= i.MaxAttempts
}

type taskInfoKey struct{}

func withTaskInfo(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, taskInfoKey{}, TaskInfo{
		ID:          t.ID,
		Queue:       t.Queue,
		Name:        t.Name,
		Attempt:     t.Attempts,
		MaxAttempts: t.MaxAttempts,
	})
}

// TaskInfoFromContext returns the info of the running task, if any.
func TaskInfoFromContext(ctx context.Context) (TaskInfo, bool) {
	info, ok := ctx.Value(taskInfoKey{}).(TaskInfo)
	return info, ok
}

func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
