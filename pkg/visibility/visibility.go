// Package visibility tracks whether the tab is currently visible. Warning
// countdowns only advance while the gate is open.
package visibility

import "sync"

// State mirrors document.visibilityState.
type State string

const (
	Visible State = "visible"
	Hidden  State = "hidden"
)

// Gate holds the current visibility state. It is safe for concurrent use.
type Gate struct {
	mu        sync.RWMutex
	state     State
	listeners map[uint64]func(State)
	nextID    uint64
}

// NewGate returns a gate in the given state. Anything other than Hidden is
// treated as Visible.
func NewGate(initial State) *Gate {
	if initial != Hidden {
		initial = Visible
	}
	return &Gate{
		state:     initial,
		listeners: make(map[uint64]func(State)),
	}
}

// Visible reports whether countdowns may decrement.
func (g *Gate) Visible() bool {
	return g.State() == Visible
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Set updates the state and notifies listeners on change. It reports
// whether the state changed.
func (g *Gate) Set(s State) bool {
	if s != Hidden {
		s = Visible
	}

	g.mu.Lock()
	if g.state == s {
		g.mu.Unlock()
		return false
	}
	g.state = s
	listeners := make([]func(State), 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
	return true
}

// Subscribe registers fn for state changes.
func (g *Gate) Subscribe(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}
