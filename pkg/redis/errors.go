package redis

import "errors"

var (
	ErrParseConnectionURL = errors.New("redis.parse_connection_url")
	ErrNotReady           = errors.New("redis.not_ready")
	ErrEmptyConnectionURL = errors.New("redis.empty_connection_url")
)
