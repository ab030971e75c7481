package binder

import "errors"

// Common binding errors
var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrInvalidForm     = errors.New("invalid form data")
	ErrBodyTooLarge    = errors.New("request body too large")
	ErrInvalidTarget   = errors.New("binder target must be *Payload")
	ErrReadRequestBody = errors.New("failed to read request body")
)
