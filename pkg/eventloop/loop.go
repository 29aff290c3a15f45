// Package eventloop serializes the session lifecycle onto a single logical
// control thread.
//
// Every state mutation runs inside Loop.Do. Timer callbacks scheduled through
// the Loop are wrapped in Do as well, so controllers never need their own
// locks. Side effects that may call back into the owner (signing out,
// publishing UI events, starting network calls) are queued with Defer and run
// after the lock is released, in queue order.
package eventloop

import (
	"sync"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
)

// Loop is a mutex-backed cooperative scheduler. It implements clock.Clock.
type Loop struct {
	clock   clock.Clock
	mu      sync.Mutex
	effects []func()
}

// New returns a Loop driven by c. A nil clock falls back to clock.Real().
func New(c clock.Clock) *Loop {
	if c == nil {
		c = clock.Real()
	}
	return &Loop{clock: c}
}

// Do runs fn on the control thread, then runs the effects it deferred.
// Do must not be called from inside fn.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	fn()
	effects := l.effects
	l.effects = nil
	l.mu.Unlock()

	for _, effect := range effects {
		effect()
	}
}

// Defer queues effect to run after the current Do returns. It must only be
// called from inside Do.
func (l *Loop) Defer(effect func()) {
	if effect != nil {
		l.effects = append(l.effects, effect)
	}
}

// Now returns the current time of the underlying clock.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// AfterFunc schedules f to run inside Do after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) clock.Timer {
	return l.clock.AfterFunc(d, func() { l.Do(f) })
}
