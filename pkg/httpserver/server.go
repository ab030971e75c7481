// Package httpserver runs an http.Handler until its context is cancelled and
// then drains in-flight requests.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cernol/formintake/pkg/logger"
)

var (
	ErrStart          = errors.New("failed to start HTTP server")
	ErrShutdown       = errors.New("failed to shutdown HTTP server gracefully")
	ErrAlreadyRunning = errors.New("server already running")
)

// Config is the environment-driven server configuration. PORT, when set,
// replaces the port part of Addr.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":5000"`
	Port            string        `env:"PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ListenAddr resolves the effective listen address.
func (c Config) ListenAddr() string {
	if c.Port == "" {
		return c.Addr
	}
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, c.Port)
}

// Hook runs on server start or stop. addr is the bound listener address.
type Hook func(ctx context.Context, addr string)

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook registers h to run once the listener is bound.
func WithStartHook(h Hook) Option {
	return func(s *Server) { s.startHooks = append(s.startHooks, h) }
}

// WithStopHook registers h to run after the server has drained.
func WithStopHook(h Hook) Option {
	return func(s *Server) { s.stopHooks = append(s.stopHooks, h) }
}

// Server wraps http.Server with context-driven graceful shutdown.
type Server struct {
	cfg        Config
	log        *slog.Logger
	startHooks []Hook
	stopHooks  []Hook

	mu  sync.Mutex
	srv *http.Server
}

func New(cfg Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves handler until ctx is done, then shuts down within
// ShutdownTimeout. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.srv = srv
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	addr := ln.Addr().String()

	for _, h := range s.startHooks {
		h(ctx, addr)
	}
	s.log.InfoContext(ctx, "http server started", slog.String("addr", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.log.InfoContext(ctx, "http server shutting down")
	shutdownErr := srv.Shutdown(sctx)
	<-errCh

	for _, h := range s.stopHooks {
		h(sctx, addr)
	}

	if shutdownErr != nil {
		return errors.Join(ErrShutdown, shutdownErr)
	}
	s.log.InfoContext(ctx, "http server stopped")
	return nil
}
