package registry

import "errors"

var (
	ErrUnreachable     = errors.New("registry.unreachable")
	ErrRejected        = errors.New("registry.rejected")
	ErrCircuitOpen     = errors.New("registry.circuit_open")
	ErrInvalidResponse = errors.New("registry.invalid_response")
	ErrInvalidRequest  = errors.New("registry.invalid_request")
	ErrNotConfigured   = errors.New("registry.not_configured")
)

// IsUnreachable reports whether err means the registry could not be reached,
// including an open circuit.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrCircuitOpen)
}
