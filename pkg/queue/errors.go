package queue

import "errors"

var (
	ErrRepositoryNil   = errors.New("repository cannot be nil")
	ErrPayloadNil      = errors.New("payload cannot be nil")
	ErrPayloadMarshal  = errors.New("failed to marshal payload to JSON")
	ErrTaskCreate      = errors.New("failed to create task in storage")
	ErrTaskNotFound    = errors.New("task not found")
	ErrNoTaskToClaim   = errors.New("no task to claim")
	ErrHandlerNotFound = errors.New("no handler registered for task")
	ErrNoHandlers      = errors.New("no task handlers registered")
	ErrAlreadyStarted  = errors.New("worker already started")
	ErrNotStarted      = errors.New("worker not started")
)
