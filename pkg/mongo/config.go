package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

// DefaultDatabase is used when neither Database nor the URI path names one.
const DefaultDatabase = "cernol"

// Config represents the configuration for the database.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/cernol"` // ConnectionURL is the URL of the database.
	Database        string        `env:"MONGODB_DATABASE"`                                          // Database overrides the database named in the URI path.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`                  // ConnectTimeout is the timeout for connecting to the database.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`                    // MaxPoolSize is the maximum number of connections in the connection pool.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the interval between retry attempts.
}

// DatabaseName resolves the database to use: the explicit setting, then the
// URI path, then DefaultDatabase.
func (c Config) DatabaseName() string {
	if c.Database != "" {
		return c.Database
	}
	cs, err := connstring.ParseAndValidate(c.ConnectionURL)
	if err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabase
}
