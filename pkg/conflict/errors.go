package conflict

import "errors"

// ErrTimeout is the outcome of a resolution call the registry did not
// answer in time.
var ErrTimeout = errors.New("conflict.timeout")
