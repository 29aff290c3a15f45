package timeout

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/statemachine"
)

// AbsoluteConfig holds the maximum session age and its warning lead time.
type AbsoluteConfig struct {
	MaxAge  time.Duration
	Warning time.Duration
}

// Validate requires 0 < Warning < MaxAge.
func (c AbsoluteConfig) Validate() error {
	if c.MaxAge <= 0 || c.Warning <= 0 {
		return fmt.Errorf("%w: absolute max age and warning must be positive", ErrInvalidConfig)
	}
	if c.Warning >= c.MaxAge {
		return fmt.Errorf("%w: absolute warning must be shorter than max age", ErrInvalidConfig)
	}
	return nil
}

// AbsoluteController signs the user out once the session is MaxAge old,
// whatever the activity. The warning fires Warning before expiry; its
// countdown pauses while the tab is hidden, but the hard deadline does not.
type AbsoluteController struct {
	cfg   AbsoluteConfig
	sched Scheduler
	opts  options
	fsm   *statemachine.Machine[Phase, trigger]

	warnTimer timer
	hard      timer
	countdown *countdown

	started   bool
	stopped   bool
	startedAt time.Time
	expiresAt time.Time
}

// NewAbsolute creates an absolute controller. It does nothing until Start.
func NewAbsolute(sched Scheduler, gate Gate, cfg AbsoluteConfig, opts ...Option) *AbsoluteController {
	o := applyOptions("absolute", opts)
	return &AbsoluteController{
		cfg:       cfg,
		sched:     sched,
		opts:      o,
		fsm:       newMachine(o.logger),
		warnTimer: timer{sched: sched},
		hard:      timer{sched: sched},
		countdown: newCountdown(sched, gate),
	}
}

// Start arms the warning at startedAt + MaxAge - Warning and the hard
// expiry at startedAt + MaxAge. A session already past either point warns
// or expires immediately.
func (c *AbsoluteController) Start(startedAt time.Time) error {
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
	c.arm(startedAt)
	return nil
}

// Extend starts a brand-new window from now. It is the only way to move the
// hard deadline.
func (c *AbsoluteController) Extend() bool {
	if !c.running() {
		return false
	}
	if err := c.fsm.Fire(bg, extend, nil); err != nil {
		return false
	}
	c.cancelAll()
	c.arm(c.sched.Now())
	c.opts.logger.Info("absolute window renewed", logger.Duration(c.cfg.MaxAge))
	c.opts.onChange(c.State())
	return true
}

// DismissWarning hides a running warning without touching the hard
// deadline. It reports whether a warning was dismissed.
func (c *AbsoluteController) DismissWarning() bool {
	if !c.running() || !c.fsm.Is(Warning) {
		return false
	}
	if err := c.fsm.Fire(bg, dismiss, nil); err != nil {
		return false
	}
	c.countdown.stop()
	c.opts.logger.Debug("absolute warning dismissed")
	c.opts.onChange(c.State())
	return true
}

// SignOutNow expires the controller immediately with ReasonUser.
func (c *AbsoluteController) SignOutNow() bool {
	return c.expire(ReasonUser)
}

// Stop cancels every pending timer without expiring.
func (c *AbsoluteController) Stop() {
	c.stopped = true
	c.cancelAll()
}

// VisibilityChanged freezes a running warning countdown while the tab is
// hidden and restarts its tick from the moment it becomes visible again.
func (c *AbsoluteController) VisibilityChanged(visible bool) {
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
func (c *AbsoluteController) State() State {
	s := State{Phase: c.fsm.Current()}
	if s.Phase == Warning {
		s.SecondsRemaining = c.countdown.remaining
	}
	return s
}

// StartedAt returns the start of the current absolute window.
func (c *AbsoluteController) StartedAt() time.Time { return c.startedAt }

// ExpiresAt returns the hard deadline of the current window.
func (c *AbsoluteController) ExpiresAt() time.Time { return c.expiresAt }

func (c *AbsoluteController) running() bool {
	return c.started && !c.stopped
}

func (c *AbsoluteController) cancelAll() {
	c.warnTimer.cancel()
	c.hard.cancel()
	c.countdown.stop()
}

func (c *AbsoluteController) arm(startedAt time.Time) {
	c.startedAt = startedAt
	c.expiresAt = startedAt.Add(c.cfg.MaxAge)
	warnAt := c.expiresAt.Add(-c.cfg.Warning)

	now := c.sched.Now()
	if !now.Before(c.expiresAt) {
		c.expire(ReasonAbsolute)
		return
	}

	c.hard.set(c.expiresAt.Sub(now), func() { c.expire(ReasonAbsolute) })
	if now.Before(warnAt) {
		c.warnTimer.set(warnAt.Sub(now), c.warn)
		return
	}
	c.warn()
}

func (c *AbsoluteController) warn() {
	if err := c.fsm.Fire(bg, fire, nil); err != nil {
		return
	}
	secs := seconds(min(c.cfg.Warning, c.expiresAt.Sub(c.sched.Now())))
	c.opts.logger.Info("absolute warning shown",
		logger.SecondsRemaining(secs),
	)
	c.countdown.start(secs,
		func(int) { c.opts.onChange(c.State()) },
		func() { c.expire(ReasonAbsolute) },
	)
	if c.fsm.Is(Warning) {
		c.opts.onChange(c.State())
	}
}

func (c *AbsoluteController) expire(reason Reason) bool {
	if !c.running() {
		return false
	}
	if err := c.fsm.Fire(bg, expire, nil); err != nil {
		return false
	}
	c.cancelAll()
	c.opts.logger.Info("absolute controller expired",
		logger.Reason(string(reason)),
		logger.Duration(c.sched.Now().Sub(c.startedAt)),
	)
	c.opts.onChange(c.State())
	c.opts.onExpire(reason)
	return true
}
