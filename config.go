package sessionguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/config"
	"github.com/dmitrymomot/sessionguard/pkg/redis"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/tabstore"
)

// Config holds the session lifecycle budgets and the collaborators'
// settings. Defaults live in DefaultConfig rather than in tags so that a
// YAML file and the environment can both override them.
type Config struct {
	IdleTimeout       time.Duration `env:"SESSION_IDLE_TIMEOUT" yaml:"idle_timeout"`
	IdleWarning       time.Duration `env:"SESSION_IDLE_WARNING" yaml:"idle_warning"`
	MaxAge            time.Duration `env:"SESSION_MAX_AGE" yaml:"max_age"`
	MaxAgeWarning     time.Duration `env:"SESSION_MAX_AGE_WARNING" yaml:"max_age_warning"`
	HeartbeatInterval time.Duration `env:"SESSION_HEARTBEAT_INTERVAL" yaml:"heartbeat_interval"`
	EventBuffer       int           `env:"SESSION_EVENT_BUFFER" yaml:"event_buffer"`

	Registry registry.Config `yaml:"registry"`
	Redis    redis.Config    `yaml:"redis"`
}

// DefaultConfig returns a 15 minute idle timeout with a 60 second warning,
// an 8 hour maximum age with a 5 minute warning and a 5 minute heartbeat.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:       15 * time.Minute,
		IdleWarning:       60 * time.Second,
		MaxAge:            8 * time.Hour,
		MaxAgeWarning:     5 * time.Minute,
		HeartbeatInterval: 5 * time.Minute,
		EventBuffer:       32,
		Registry:          registry.DefaultConfig(),
		Redis:             redis.DefaultConfig(),
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig and applies
// environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive durations and warnings that are not shorter
// than their timeout. The registry settings are validated by the registry
// client.
func (c Config) Validate() error {
	for name, d := range map[string]time.Duration{
		"idle_timeout":       c.IdleTimeout,
		"idle_warning":       c.IdleWarning,
		"max_age":            c.MaxAge,
		"max_age_warning":    c.MaxAgeWarning,
		"heartbeat_interval": c.HeartbeatInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.IdleWarning >= c.IdleTimeout {
		return fmt.Errorf("%w: idle_warning must be shorter than idle_timeout", ErrInvalidConfig)
	}
	if c.MaxAgeWarning >= c.MaxAge {
		return fmt.Errorf("%w: max_age_warning must be shorter than max_age", ErrInvalidConfig)
	}
	return nil
}

// registryTimeout bounds every registry call made by the guard, whatever
// the client enforces itself.
func (c Config) registryTimeout() time.Duration {
	if c.Registry.Timeout > 0 {
		return c.Registry.Timeout
	}
	return registry.DefaultConfig().Timeout
}

// OpenTabStore returns a Redis-backed tab store when Redis is configured
// and an in-memory one otherwise. The returned close function releases the
// connection.
func OpenTabStore(ctx context.Context, cfg Config) (tabstore.Store, func() error, error) {
	if cfg.Redis.ConnectionURL == "" {
		return tabstore.NewMemoryStore(), func() error { return nil }, nil
	}
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, errors.Join(ErrInvalidConfig, err)
	}
	return tabstore.NewRedisStore(client), client.Close, nil
}
