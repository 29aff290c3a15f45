package tabstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "sessionguard:tab:"
	DefaultTTL       = 24 * time.Hour
)

// RedisStore is a Store shared by every process that serves a tab.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key prefix. Defaults to DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets how long an id outlives its last write. Defaults to
// DefaultTTL. Zero keeps ids forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(tabID string) string {
	return s.prefix + tabID
}

func (s *RedisStore) Get(ctx context.Context, tabID string) (string, error) {
	if err := validate(tabID); err != nil {
		return "", err
	}

	id, err := s.client.Get(ctx, s.key(tabID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	return id, nil
}

func (s *RedisStore) SetOnce(ctx context.Context, tabID, sessionID string) (string, bool, error) {
	if err := validate(tabID, sessionID); err != nil {
		return "", false, err
	}

	created, err := s.client.SetNX(ctx, s.key(tabID), sessionID, s.ttl).Result()
	if err != nil {
		return "", false, errors.Join(ErrStorage, err)
	}
	if created {
		return sessionID, true, nil
	}

	id, err := s.Get(ctx, tabID)
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

func (s *RedisStore) Delete(ctx context.Context, tabID string) error {
	if err := validate(tabID); err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.key(tabID)).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
