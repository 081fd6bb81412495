package savequeue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes the queue. Zero values are replaced with defaults in New.
type Config struct {
	// Shards is the number of worker goroutines. Saves for the same identity
	// always land on the same shard, preserving FIFO order per user.
	Shards int `envconfig:"SHARDS" default:"2"`

	// QueueSize is the per-shard channel capacity.
	QueueSize int `envconfig:"QUEUE_SIZE" default:"128"`

	// EnqueueTimeout bounds how long Submit waits for queue space before
	// reporting back-pressure.
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// MaxAttempts caps retries for recoverable save failures.
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"5"`

	// BaseBackoff is the initial retry interval; it doubles up to MaxInterval.
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"10s"`

	// ErrorHandler receives errors from saves that exhausted their retries or
	// failed irrecoverably. Remote storage is a best-effort mirror, so these
	// are reported, never surfaced to UI flows.
	ErrorHandler func(error) `ignored:"true"`
}

// LoadConfig reads queue tuning from CWQ_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("CWQ", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
