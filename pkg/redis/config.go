package redis

import "time"

// Config describes the Redis connection backing the per-tab session id store.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" yaml:"url"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" yaml:"retry_attempts"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" yaml:"retry_interval"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" yaml:"connect_timeout"`
}

// DefaultConfig returns 3 attempts one second apart within 10 seconds. The
// URL is left empty.
func DefaultConfig() Config {
	return Config{
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}
