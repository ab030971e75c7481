// Package binder reads form submissions into loosely typed payloads.
//
// Clients post either JSON objects or urlencoded forms. Both end up as a
// Payload whose values are strings, numbers, booleans, nested objects or
// []any lists, which is what the sanitizers downstream expect.
package binder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 << 20

// Payload is a decoded request body.
type Payload map[string]any

// String returns the value at key when it is a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// BindPayload creates a binder that decodes the body into a *Payload
// according to Content-Type. Bodies of other media types bind to an empty
// payload, so the request fails the required field checks instead.
//
// Example:
//
//	h := handler.Wrap(submit, handler.WithBinder[handler.Context, binder.Payload](binder.BindPayload(1<<20)))
func BindPayload(maxBytes int64) func(r *http.Request, v any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return func(r *http.Request, v any) error {
		dst, ok := v.(*Payload)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrInvalidTarget, v)
		}
		*dst = Payload{}

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" && mediaType != "application/x-www-form-urlencoded" {
			return nil
		}

		body, err := readBody(r, maxBytes)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}

		if mediaType == "application/json" {
			return decodeJSON(body, dst)
		}
		return decodeForm(body, dst)
	}
}

func readBody(r *http.Request, maxBytes int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	if r.ContentLength > maxBytes {
		return nil, ErrBodyTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, errors.Join(ErrReadRequestBody, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}
