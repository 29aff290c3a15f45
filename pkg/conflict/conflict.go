package conflict

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/async"
	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/statemachine"
)

// Phase is the state of the conflict modal.
type Phase string

const (
	None      Phase = "none"
	Detected  Phase = "detected"
	Resolving Phase = "resolving"
)

// Reason explains a sign-out requested by a resolution.
type Reason string

const (
	ReasonOtherDevice      Reason = "other_device"
	ReasonLogoutEverywhere Reason = "logout_everywhere"
)

// Resolution names the action the user chose.
type Resolution string

const (
	ContinueHere          Resolution = "continue_here"
	ContinueOnOtherDevice Resolution = "continue_other_device"
	LogoutEverywhere      Resolution = "logout_everywhere"
	Dismissed             Resolution = "dismissed"
)

// View is the conflict modal model.
type View struct {
	Open          bool              `json:"open"`
	Phase         Phase             `json:"phase"`
	OtherSession  *registry.Session `json:"other_session,omitempty"`
	DeviceLabel   string            `json:"device_label,omitempty"`
	LocationLabel string            `json:"location_label,omitempty"`
}

// DefaultTimeout bounds a resolution call when WithTimeout is not given.
const DefaultTimeout = 10 * time.Second

// Loop is the control thread. *eventloop.Loop implements it.
type Loop interface {
	Do(fn func())
	Defer(effect func())
	AfterFunc(d time.Duration, f func()) clock.Timer
}

// Identity is the login the controller resolves conflicts for.
type Identity struct {
	SessionID string
	UserID    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds every resolution call. Once it elapses the conflict
// settles as if the registry had failed, and the call's context is
// cancelled.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// OnChange registers a callback invoked on the control thread whenever the
// View changes.
func OnChange(fn func(View)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// OnSignOut registers the sign-out callback for ContinueOnOtherDevice and
// LogoutEverywhere. It runs on the control thread.
func OnSignOut(fn func(Reason)) Option {
	return func(c *Controller) { c.onSignOut = fn }
}

type trigger string

const (
	detect  trigger = "detect"
	resolve trigger = "resolve"
	settle  trigger = "settle"
	dismiss trigger = "dismiss"
)

// Controller owns the conflict state for one login. Its methods must be
// called on the control thread; registry calls run in the background and
// report back through Loop.Do.
type Controller struct {
	loop     Loop
	client   registry.Client
	identity Identity
	fsm      *statemachine.Machine[Phase, trigger]
	logger   *slog.Logger
	timeout  time.Duration

	onChange  func(View)
	onSignOut func(Reason)

	other    *registry.Session
	detected bool
	gen      uint64
	inflight sync.WaitGroup
	deadline clock.Timer
}

// New returns a controller in the None phase.
func New(loop Loop, client registry.Client, id Identity, opts ...Option) *Controller {
	c := &Controller{
		loop:     loop,
		client:   client,
		identity: id,
		logger:   slog.Default(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onChange == nil {
		c.onChange = func(View) {}
	}
	if c.onSignOut == nil {
		c.onSignOut = func(Reason) {}
	}
	c.logger = c.logger.With(
		logger.Component("conflict"),
		logger.SessionID(id.SessionID),
	)

	log := c.logger
	c.fsm = statemachine.MustNew(None,
		statemachine.WithTransition(None, Detected, detect),
		statemachine.WithTransition(Detected, Resolving, resolve),
		statemachine.WithTransition(Resolving, None, settle),
		statemachine.WithTransition(Detected, None, dismiss),
		statemachine.WithObserver(func(from, to Phase, event trigger) {
			log.Debug("phase changed",
				slog.String("from", string(from)),
				logger.Phase(string(to)),
				logger.Event(string(event)),
			)
		}),
	)
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.fsm.Current() }

// View returns the modal model.
func (c *Controller) View() View {
	v := View{Phase: c.fsm.Current()}
	if v.Phase == None || c.other == nil {
		return v
	}
	v.Open = true
	other := *c.other
	v.OtherSession = &other
	v.DeviceLabel = other.DeviceLabel()
	v.LocationLabel = other.LocationLabel()
	return v
}

// Detect opens the modal for the registry's create result. It does nothing
// unless the result reports another session, and it opens at most once per
// controller.
func (c *Controller) Detect(res registry.CreateResult) bool {
	if !res.HasOtherSessions || res.OtherSession == nil || c.detected {
		return false
	}
	if err := c.fsm.Fire(context.Background(), detect, nil); err != nil {
		return false
	}
	c.detected = true
	other := *res.OtherSession
	c.other = &other

	c.logger.Info("concurrent session detected",
		slog.String("other_session_id", other.ID),
		slog.String("device", other.DeviceLabel()),
		slog.String("location", other.LocationLabel()),
	)
	c.changed()
	return true
}

// ContinueHere asks the registry to deactivate every other session and
// closes the modal when the call returns, whatever its outcome. The user
// stays signed in.
func (c *Controller) ContinueHere(ctx context.Context) bool {
	if !c.begin(ContinueHere) {
		return false
	}
	id := c.identity
	c.call(ctx, ContinueHere, func(ctx context.Context) error {
		return c.client.DeactivateOther(ctx, id.SessionID, id.UserID)
	}, func() {})
	return true
}

// ContinueOnOtherDevice closes the modal and signs out locally. The
// registry is not called.
func (c *Controller) ContinueOnOtherDevice() bool {
	if c.fsm.Current() != Detected {
		return false
	}
	_ = c.fsm.Fire(context.Background(), dismiss, nil)
	c.other = nil
	c.logger.Info("conflict resolved", logger.Action(string(ContinueOnOtherDevice)))
	c.changed()
	c.onSignOut(ReasonOtherDevice)
	return true
}

// LogoutEverywhere asks the registry to deactivate every session of the
// user, then signs out locally even if the call failed or timed out.
func (c *Controller) LogoutEverywhere(ctx context.Context) bool {
	if !c.begin(LogoutEverywhere) {
		return false
	}
	id := c.identity
	c.call(ctx, LogoutEverywhere, func(ctx context.Context) error {
		return c.client.DeactivateAll(ctx, id.UserID)
	}, func() { c.onSignOut(ReasonLogoutEverywhere) })
	return true
}

// Dismiss closes the modal without resolving. Both sessions stay active.
func (c *Controller) Dismiss() bool {
	if c.fsm.Current() != Detected {
		return false
	}
	_ = c.fsm.Fire(context.Background(), dismiss, nil)
	c.other = nil
	c.logger.Info("conflict dismissed", logger.Action(string(Dismissed)))
	c.changed()
	return true
}

// Reset closes the modal and discards the outcome of any registry call in
// flight. It is called on sign-out.
func (c *Controller) Reset() {
	c.gen++
	c.stopDeadline()
	changed := c.fsm.Current() != None
	c.fsm.Reset()
	c.other = nil
	if changed {
		c.changed()
	}
}

// Wait blocks until every registry call started by the controller has
// returned. It must not be called on the control thread.
func (c *Controller) Wait() { c.inflight.Wait() }

func (c *Controller) begin(r Resolution) bool {
	if err := c.fsm.Fire(context.Background(), resolve, nil); err != nil {
		return false
	}
	c.logger.Info("resolving conflict", logger.Action(string(r)))
	c.changed()
	return true
}

// call runs fn off the control thread and settles the conflict once it
// returns or the timeout elapses, whichever comes first. then runs on the
// control thread after the modal closes.
func (c *Controller) call(ctx context.Context, r Resolution, fn func(context.Context) error, then func()) {
	gen := c.gen
	ctx, cancel := context.WithCancelCause(ctx)

	done := false
	finish := func(err error) {
		if done {
			return
		}
		done = true
		cancel(err)
		c.settled(gen, r, err, then)
	}
	c.deadline = c.loop.AfterFunc(c.timeout, func() {
		c.deadline = nil
		finish(ErrTimeout)
	})

	c.inflight.Add(1)
	c.loop.Defer(func() {
		f := async.Async(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		async.Then(f, func(_ struct{}, err error) {
			defer c.inflight.Done()
			c.loop.Do(func() {
				if gen == c.gen {
					c.stopDeadline()
				}
				finish(err)
			})
		})
	})
}

func (c *Controller) stopDeadline() {
	if c.deadline != nil {
		c.deadline.Stop()
		c.deadline = nil
	}
}

func (c *Controller) settled(gen uint64, r Resolution, err error, then func()) {
	if gen != c.gen {
		c.logger.Debug("stale registry result ignored", logger.Action(string(r)), logger.Error(err))
		return
	}
	if err != nil {
		c.logger.Warn("registry call failed", logger.Action(string(r)), logger.Error(err))
	}
	_ = c.fsm.Fire(context.Background(), settle, nil)
	c.other = nil
	c.changed()
	then()
}

func (c *Controller) changed() {
	c.onChange(c.View())
}
