package heartbeat

import "errors"

var (
	ErrInvalidInterval = errors.New("heartbeat.invalid_interval")
	ErrNilBeat         = errors.New("heartbeat.nil_beat")
	ErrAlreadyRunning  = errors.New("heartbeat.already_running")
)
