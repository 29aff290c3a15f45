package sessionguard

import "errors"

var (
	ErrInvalidConfig    = errors.New("sessionguard.invalid_config")
	ErrNilAuthProvider  = errors.New("sessionguard.nil_auth_provider")
	ErrNotAuthenticated = errors.New("sessionguard.not_authenticated")
	ErrAlreadyStarted   = errors.New("sessionguard.already_started")
	ErrSessionExpired   = errors.New("sessionguard.session_expired")
	ErrRegistryTimeout  = errors.New("sessionguard.registry_timeout")
)
