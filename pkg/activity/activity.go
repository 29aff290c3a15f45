// Package activity turns raw user-interaction signals into a single
// "activity" event stream for the idle timer.
//
// The monitor does no debouncing of its own: consumers re-arm a deadline on
// every event, so only the latest event matters.
package activity

import (
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
)

// Signal is a raw interaction signal reported by the UI layer.
type Signal string

// Qualifying signals.
const (
	PointerDown Signal = "pointerdown"
	PointerMove Signal = "pointermove"
	KeyPress    Signal = "keypress"
	Scroll      Signal = "scroll"
	TouchStart  Signal = "touchstart"
	TouchMove   Signal = "touchmove"
	TouchEnd    Signal = "touchend"
	Click       Signal = "click"
	Focus       Signal = "focus"
	Blur        Signal = "blur"
)

var qualifying = map[Signal]struct{}{
	PointerDown: {}, PointerMove: {}, KeyPress: {}, Scroll: {},
	TouchStart: {}, TouchMove: {}, TouchEnd: {}, Click: {},
	Focus: {}, Blur: {},
}

// Signals returns every qualifying signal.
func Signals() []Signal {
	return []Signal{PointerDown, PointerMove, KeyPress, Scroll, TouchStart, TouchMove, TouchEnd, Click, Focus, Blur}
}

// Qualifies reports whether s counts as user activity.
func (s Signal) Qualifies() bool {
	_, ok := qualifying[s]
	return ok
}

// Event is a qualifying signal stamped with the time it was observed.
type Event struct {
	Signal Signal
	At     time.Time
}

// Listener receives activity events.
type Listener func(Event)

// Monitor fans qualifying signals out to listeners in emission order.
type Monitor struct {
	clock     clock.Clock
	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
	closed    bool
}

// NewMonitor returns a monitor stamping events with c.
func NewMonitor(c clock.Clock) *Monitor {
	if c == nil {
		c = clock.Real()
	}
	return &Monitor{
		clock:     c,
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (m *Monitor) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || fn == nil {
		return func() {}
	}

	m.nextID++
	id := m.nextID
	m.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Emit delivers s to every listener if it qualifies. It reports whether an
// event was emitted.
func (m *Monitor) Emit(s Signal) bool {
	if !s.Qualifies() {
		return false
	}

	m.mu.RLock()
	if m.closed || len(m.listeners) == 0 {
		m.mu.RUnlock()
		return false
	}
	ids := make([]uint64, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.RUnlock()

	ev := Event{Signal: s, At: m.clock.Now()}
	for _, fn := range listeners {
		fn(ev)
	}
	return true
}

// Close detaches every listener. Subsequent emits are dropped.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	clear(m.listeners)
}
