package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// Heartbeat calls a function on a fixed interval until stopped. The first
// call happens one interval after Start. It is safe for concurrent use.
type Heartbeat struct {
	clock    clock.Clock
	interval time.Duration
	beat     func()
	logger   *slog.Logger

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	running bool
	beats   int
}

// Option configures a Heartbeat.
type Option func(*Heartbeat)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Heartbeat) {
		if l != nil {
			h.logger = l
		}
	}
}

// New returns a stopped Heartbeat that calls beat every interval on c.
func New(c clock.Clock, interval time.Duration, beat func(), opts ...Option) (*Heartbeat, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if beat == nil {
		return nil, ErrNilBeat
	}
	if c == nil {
		c = clock.Real()
	}

	h := &Heartbeat{
		clock:    c,
		interval: interval,
		beat:     beat,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Start schedules the first beat. It returns ErrAlreadyRunning if the
// heartbeat is running.
func (h *Heartbeat) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrAlreadyRunning
	}
	h.running = true
	h.schedule()

	h.logger.DebugContext(context.Background(), "heartbeat started",
		logger.Component("heartbeat"),
		logger.Duration(h.interval),
	)
	return nil
}

// Stop cancels the pending beat. A beat already due but not yet delivered
// is discarded. Stop reports whether the heartbeat was running.
func (h *Heartbeat) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return false
	}
	h.running = false
	h.gen++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}

	h.logger.DebugContext(context.Background(), "heartbeat stopped",
		logger.Component("heartbeat"),
		slog.Int("beats", h.beats),
	)
	return true
}

// Running reports whether beats are scheduled.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Beats returns the number of beats delivered since New.
func (h *Heartbeat) Beats() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.beats
}

// schedule must be called with mu held.
func (h *Heartbeat) schedule() {
	gen := h.gen
	h.timer = h.clock.AfterFunc(h.interval, func() { h.fire(gen) })
}

func (h *Heartbeat) fire(gen uint64) {
	h.mu.Lock()
	if !h.running || gen != h.gen {
		h.mu.Unlock()
		return
	}
	h.beats++
	h.schedule()
	h.mu.Unlock()

	h.beat()
}
