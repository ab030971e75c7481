package main

import (
	"fmt"
	"time"

	"github.com/cernol/formintake/pkg/config"
	"github.com/cernol/formintake/pkg/email"
	"github.com/cernol/formintake/pkg/httpserver"
	"github.com/cernol/formintake/pkg/mongo"
	"github.com/cernol/formintake/pkg/pg"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/pkg/ratelimit"
	"github.com/cernol/formintake/pkg/redis"
)

// Store drivers.
const (
	storeMongo    = "mongo"
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// Dispatch strategies for contact emails.
const (
	dispatchInline = "inline"
	dispatchQueue  = "queue"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Name    string `env:"APP_NAME" envDefault:"formintake"`
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`

	HTTP         httpserver.Config
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"10485760"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	Mongo       mongo.Config
	Postgres    pg.Config

	Email         email.Config
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPanelURL string `env:"ADMIN_PANEL_URL" envDefault:"#"`
	TimeZone      string `env:"EMAIL_TIMEZONE" envDefault:"UTC"`
	location      *time.Location

	Dispatch        string        `env:"DISPATCH_STRATEGY" envDefault:"inline"`
	DispatchWorkers int           `env:"DISPATCH_WORKERS" envDefault:"5"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"30s"`
	Redis           redis.Config
	Queue           queue.Config

	RateLimit      ratelimit.Config
	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`
}

func loadConfig(opts ...config.Option) (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg, opts...); err != nil {
		return cfg, err
	}

	switch cfg.StoreDriver {
	case storeMongo, storePostgres, storeMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.Dispatch {
	case dispatchInline, dispatchQueue:
	default:
		return cfg, fmt.Errorf("unknown DISPATCH_STRATEGY %q", cfg.Dispatch)
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return cfg, fmt.Errorf("invalid EMAIL_TIMEZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.location = loc
	return cfg, nil
}
