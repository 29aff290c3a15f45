package timeout

import "errors"

var (
	ErrAlreadyStarted = errors.New("timeout.already_started")
	ErrStopped        = errors.New("timeout.stopped")
	ErrInvalidConfig  = errors.New("timeout.invalid_config")
)
