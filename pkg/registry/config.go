package registry

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the registry endpoint settings.
type Config struct {
	URL              string        `env:"REGISTRY_URL" yaml:"url"`
	Timeout          time.Duration `env:"REGISTRY_TIMEOUT" yaml:"timeout"`
	FailureThreshold int           `env:"REGISTRY_CIRCUIT_FAILURES" yaml:"circuit_failures"`
	SuccessThreshold int           `env:"REGISTRY_CIRCUIT_SUCCESSES" yaml:"circuit_successes"`
	RecoveryTimeout  time.Duration `env:"REGISTRY_CIRCUIT_RECOVERY" yaml:"circuit_recovery"`
}

// DefaultConfig returns the defaults: 10 second calls, circuit opening after
// 5 consecutive failures and probing again after 30 seconds.
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		RecoveryTimeout:  30 * time.Second,
	}
}

// Validate checks the endpoint URL and timeout.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrNotConfigured
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: registry url must be an absolute http(s) url", ErrNotConfigured)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrNotConfigured)
	}
	return nil
}
