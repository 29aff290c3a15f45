package timeout

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/statemachine"
)

// IdleConfig holds the idle budget and its warning grace period.
type IdleConfig struct {
	Timeout time.Duration
	Warning time.Duration
}

// Validate checks both durations are positive.
func (c IdleConfig) Validate() error {
	if c.Timeout <= 0 || c.Warning <= 0 {
		return fmt.Errorf("%w: idle timeout and warning must be positive", ErrInvalidConfig)
	}
	return nil
}

// IdleController signs the user out after Timeout without activity plus a
// Warning grace period that only counts down while the tab is visible.
//
// Activity re-arms the deadline while Active. Once the warning is showing
// activity is ignored and only Extend returns the controller to Active.
type IdleController struct {
	cfg   IdleConfig
	sched Scheduler
	opts  options
	fsm   *statemachine.Machine[Phase, trigger]

	deadline  timer
	countdown *countdown

	started        bool
	stopped        bool
	deadlineAt     time.Time
	lastActivityAt time.Time
}

// NewIdle creates an idle controller. It does nothing until Start.
func NewIdle(sched Scheduler, gate Gate, cfg IdleConfig, opts ...Option) *IdleController {
	o := applyOptions("idle", opts)
	return &IdleController{
		cfg:       cfg,
		sched:     sched,
		opts:      o,
		fsm:       newMachine(o.logger),
		deadline:  timer{sched: sched},
		countdown: newCountdown(sched, gate),
	}
}

// Start arms the first deadline at now + Timeout.
func (c *IdleController) Start() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	c.lastActivityAt = c.sched.Now()
	c.arm()
	return nil
}

// Touch records qualifying activity at the current time. It reports whether
// the deadline was re-armed; activity during a warning or after expiry is
// ignored.
func (c *IdleController) Touch() bool {
	if !c.running() || !c.fsm.Is(Active) {
		return false
	}
	c.lastActivityAt = c.sched.Now()
	c.arm()
	return true
}

// Extend cancels a pending warning and re-arms a fresh deadline at
// now + Timeout. It reports false after expiry or Stop.
func (c *IdleController) Extend() bool {
	if !c.running() {
		return false
	}
	wasWarning := c.fsm.Is(Warning)
	if err := c.fsm.Fire(bg, extend, nil); err != nil {
		return false
	}
	c.countdown.stop()
	c.lastActivityAt = c.sched.Now()
	c.arm()
	if wasWarning {
		c.opts.logger.Info("idle warning extended")
	}
	c.opts.onChange(c.State())
	return true
}

// SignOutNow expires the controller immediately with ReasonUser.
func (c *IdleController) SignOutNow() bool {
	return c.expire(ReasonUser)
}

// Stop cancels every pending timer without expiring. A stopped controller
// cannot be restarted.
func (c *IdleController) Stop() {
	c.stopped = true
	c.deadline.cancel()
	c.countdown.stop()
}

// VisibilityChanged freezes a running warning countdown while the tab is
// hidden and restarts its tick from the moment it becomes visible again.
func (c *IdleController) VisibilityChanged(visible bool) {
	if !c.running() || !c.fsm.Is(Warning) {
		return
	}
	if visible {
		c.countdown.resume()
		return
	}
	c.countdown.pause()
}

// State returns the current phase and countdown.
func (c *IdleController) State() State {
	s := State{Phase: c.fsm.Current()}
	if s.Phase == Warning {
		s.SecondsRemaining = c.countdown.remaining
	}
	return s
}

// Deadline returns when the warning will fire. It is zero outside Active.
func (c *IdleController) Deadline() time.Time {
	if !c.fsm.Is(Active) || !c.deadline.pending() {
		return time.Time{}
	}
	return c.deadlineAt
}

// LastActivityAt returns the time of the last accepted activity.
func (c *IdleController) LastActivityAt() time.Time {
	return c.lastActivityAt
}

func (c *IdleController) running() bool {
	return c.started && !c.stopped
}

func (c *IdleController) arm() {
	c.deadlineAt = c.sched.Now().Add(c.cfg.Timeout)
	c.deadline.set(c.cfg.Timeout, c.warn)
}

func (c *IdleController) warn() {
	if err := c.fsm.Fire(bg, fire, nil); err != nil {
		return
	}
	secs := seconds(c.cfg.Warning)
	c.opts.logger.Info("idle warning shown", logger.SecondsRemaining(secs))
	c.countdown.start(secs,
		func(int) { c.opts.onChange(c.State()) },
		func() { c.expire(ReasonIdle) },
	)
	if c.fsm.Is(Warning) {
		c.opts.onChange(c.State())
	}
}

func (c *IdleController) expire(reason Reason) bool {
	if !c.running() {
		return false
	}
	if err := c.fsm.Fire(bg, expire, nil); err != nil {
		return false
	}
	c.deadline.cancel()
	c.countdown.stop()
	c.opts.logger.Info("idle controller expired",
		logger.Reason(string(reason)),
		slog.Time("last_activity_at", c.lastActivityAt),
	)
	c.opts.onChange(c.State())
	c.opts.onExpire(reason)
	return true
}
