// Package config populates tagged structs from the process environment.
//
// A .env file in the working directory, when present, is loaded once before
// the first parse. Values already set in the environment win over the file.
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
)

var dotenvOnce sync.Once

// Option adjusts a single Load call.
type Option func(*env.Options)

// WithEnvironment parses from the given map instead of the process
// environment. The .env file is not consulted.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// WithPrefix requires every variable name to carry prefix.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// Load parses environment variables into v according to its `env` tags.
//
//	type HTTP struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":5000"`
//	}
//
//	var cfg HTTP
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Environment == nil {
		dotenvOnce.Do(func() {
			// A missing .env is normal outside local development.
			_ = godotenv.Load()
		})
	}

	if err := env.ParseWithOptions(v, o); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(err)
	}
}
