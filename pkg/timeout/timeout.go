package timeout

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/statemachine"
)

// Tick is the countdown resolution.
const Tick = time.Second

// Phase is the state of a timeout controller.
type Phase string

const (
	Active  Phase = "active"
	Warning Phase = "warning"
	Expired Phase = "expired"
)

// State is a snapshot of a controller. SecondsRemaining is meaningful only
// in the Warning phase.
type State struct {
	Phase            Phase
	SecondsRemaining int
}

// Warning reports whether the grace countdown is running.
func (s State) Warning() bool { return s.Phase == Warning }

// Reason explains why a controller expired.
type Reason string

const (
	ReasonUser     Reason = "user"
	ReasonIdle     Reason = "idle_timeout"
	ReasonAbsolute Reason = "absolute_timeout"
)

// Scheduler is the control thread controllers run on. *eventloop.Loop
// implements it.
type Scheduler interface {
	clock.Clock
	Defer(effect func())
}

// Gate reports whether countdowns may decrement. *visibility.Gate
// implements it.
type Gate interface {
	Visible() bool
}

type alwaysVisible struct{}

func (alwaysVisible) Visible() bool { return true }

// Option configures a controller.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	onChange func(State)
	onExpire func(Reason)
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// OnChange registers a callback for phase changes and countdown ticks.
// It runs on the control thread and must not block.
func OnChange(fn func(State)) Option {
	return func(o *options) { o.onChange = fn }
}

// OnExpire registers the sign-out callback. It runs on the control thread
// exactly once per controller; slow work should be queued with
// Scheduler.Defer.
func OnExpire(fn func(Reason)) Option {
	return func(o *options) { o.onExpire = fn }
}

func applyOptions(name string, opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.onChange == nil {
		o.onChange = func(State) {}
	}
	if o.onExpire == nil {
		o.onExpire = func(Reason) {}
	}
	o.logger = o.logger.With(logger.Component(name))
	return o
}

type trigger string

const (
	fire    trigger = "fire"
	extend  trigger = "extend"
	dismiss trigger = "dismiss"
	expire  trigger = "expire"
)

// newMachine builds the shared Active/Warning/Expired lifecycle. Expired is
// terminal.
func newMachine(log *slog.Logger) *statemachine.Machine[Phase, trigger] {
	return statemachine.MustNew(Active,
		statemachine.WithTransition(Active, Warning, fire),
		statemachine.WithTransitionsFrom([]Phase{Active, Warning}, Active, extend),
		statemachine.WithTransition(Warning, Active, dismiss),
		statemachine.WithTransitionsFrom([]Phase{Active, Warning}, Expired, expire),
		statemachine.WithObserver(func(from, to Phase, event trigger) {
			log.Debug("phase changed",
				slog.String("from", string(from)),
				logger.Phase(string(to)),
				logger.Event(string(event)),
			)
		}),
	)
}

// seconds rounds d up to whole countdown ticks.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(Tick)))
}

// timer is a cancellable one-shot deadline. Callbacks from a cancelled or
// replaced schedule are ignored even if the underlying timer already fired.
type timer struct {
	sched Scheduler
	t     clock.Timer
	gen   uint64
}

func (d *timer) set(after time.Duration, f func()) {
	d.cancel()
	gen := d.gen
	d.t = d.sched.AfterFunc(after, func() {
		if d.gen != gen {
			return
		}
		d.t = nil
		f()
	})
}

func (d *timer) cancel() {
	d.gen++
	if d.t != nil {
		d.t.Stop()
		d.t = nil
	}
}

func (d *timer) pending() bool { return d.t != nil }

// countdown decrements once per Tick while the gate is open. Visible time
// is counted exactly when the owner reports visibility changes through
// pause and resume; otherwise hidden ticks are skipped.
type countdown struct {
	timer
	gate      Gate
	remaining int
	onTick    func(remaining int)
	onZero    func()

	interval time.Duration
	armedAt  time.Time
	paused   bool
	carry    time.Duration
}

func newCountdown(sched Scheduler, gate Gate) *countdown {
	if gate == nil {
		gate = alwaysVisible{}
	}
	return &countdown{timer: timer{sched: sched}, gate: gate}
}

func (c *countdown) start(secs int, onTick func(int), onZero func()) {
	c.remaining = secs
	c.onTick = onTick
	c.onZero = onZero
	c.paused = false
	if secs <= 0 {
		c.cancel()
		onZero()
		return
	}
	c.next(Tick)
}

func (c *countdown) next(d time.Duration) {
	c.interval, c.armedAt = d, c.sched.Now()
	c.set(d, func() {
		if c.gate.Visible() {
			c.remaining--
			if c.remaining <= 0 {
				c.remaining = 0
				c.onZero()
				return
			}
			c.onTick(c.remaining)
		}
		c.next(Tick)
	})
}

// pause freezes the countdown, keeping the part of the current tick that
// was already spent visible.
func (c *countdown) pause() {
	if c.paused || !c.pending() {
		return
	}
	c.carry = c.interval - c.sched.Now().Sub(c.armedAt)
	if c.carry <= 0 || c.carry > Tick {
		c.carry = Tick
	}
	c.cancel()
	c.paused = true
}

// resume restarts the tick from the moment the gate reopened.
func (c *countdown) resume() {
	switch {
	case c.paused:
		c.paused = false
		c.next(c.carry)
	case c.pending():
		c.next(Tick)
	}
}

func (c *countdown) stop() {
	c.cancel()
	c.paused = false
	c.remaining = 0
}

var bg = context.Background()
