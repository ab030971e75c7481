package redis

import (
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes a Redis server. ConnectionURL wins when set; otherwise the
// discrete host settings are used.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // redis://:password@localhost:6379/0
	Host           string        `env:"REDIS_HOST" envDefault:"localhost"`      // Host is used when REDIS_URL is empty.
	Port           int           `env:"REDIS_PORT" envDefault:"6379"`           // Port is used when REDIS_URL is empty.
	Password       string        `env:"REDIS_PASSWORD"`                         // Password is used when REDIS_URL is empty.
	DB             int           `env:"REDIS_DB" envDefault:"0"`                // DB is used when REDIS_URL is empty.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds the whole connect loop.
}

// Options builds client options from the config.
func (c Config) Options() (*redis.Options, error) {
	if c.ConnectionURL != "" {
		opts, err := redis.ParseURL(c.ConnectionURL)
		if err != nil {
			return nil, err
		}
		return opts, nil
	}

	if c.Host == "" {
		return nil, ErrEmptyConnectionURL
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Password: c.Password,
		DB:       c.DB,
	}, nil
}
