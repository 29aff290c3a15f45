package sessionguard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/activity"
	"github.com/dmitrymomot/sessionguard/pkg/async"
	"github.com/dmitrymomot/sessionguard/pkg/broadcast"
	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/conflict"
	"github.com/dmitrymomot/sessionguard/pkg/eventloop"
	"github.com/dmitrymomot/sessionguard/pkg/heartbeat"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/tabstore"
	"github.com/dmitrymomot/sessionguard/pkg/timeout"
	"github.com/dmitrymomot/sessionguard/pkg/visibility"
	"github.com/dmitrymomot/sessionguard/pkg/warning"
)

type lifecycle int

const (
	created lifecycle = iota
	running
	signedOut
	stopped
)

// Status is a snapshot of both timeout controllers.
type Status struct {
	Running      bool
	Idle         timeout.State
	Absolute     timeout.State
	IdleDeadline time.Time
	ExpiresAt    time.Time
}

// Guard supervises the session lifecycle of one authenticated tab.
type Guard struct {
	cfg    Config
	auth   AuthProvider
	client registry.Client
	tabs   tabstore.Store
	tabID  string
	clock  clock.Clock
	loop   *eventloop.Loop
	logger *slog.Logger
	events *broadcast.MemoryBroadcaster[Event]

	monitor   *activity.Monitor
	gate      *visibility.Gate
	idle      *timeout.IdleController
	absolute  *timeout.AbsoluteController
	presenter *warning.Presenter
	conflict  *conflict.Controller
	heartbeat *heartbeat.Heartbeat

	ctx       context.Context
	cancel    context.CancelFunc
	detach    []func()
	user      User
	sessionID string
	state     lifecycle
	gen       uint64
	inflight  sync.WaitGroup
	callSeq   uint64
	deadlines map[uint64]clock.Timer
}

// New validates cfg and returns a Guard that does nothing until Start. A
// nil client disables the registry.
func New(cfg Config, auth AuthProvider, client registry.Client, opts ...Option) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if auth == nil {
		return nil, ErrNilAuthProvider
	}
	if client == nil {
		client = registry.Nop{}
	}

	g := &Guard{
		cfg:    cfg,
		auth:   auth,
		client: client,
		clock:  clock.Real(),
		logger: slog.Default(),
		gate:   visibility.NewGate(visibility.Visible),

		deadlines: make(map[uint64]clock.Timer),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tabID == "" {
		g.tabID = uuid.NewString()
	}
	if g.tabs == nil {
		g.tabs = tabstore.NewMemoryStore()
	}

	g.loop = eventloop.New(g.clock)
	g.monitor = activity.NewMonitor(g.clock)
	g.events = broadcast.NewMemoryBroadcaster[Event](cfg.EventBuffer)
	g.logger = g.logger.With(logger.Component("guard"), logger.TabID(g.tabID))
	return g, nil
}

// Start resolves the current user, arms both timeouts, starts the heartbeat
// and registers the login with the registry unless this tab already did.
// Cancelling ctx stops the guard without signing out.
//
// Start returns ErrSessionExpired if the session is already older than
// the maximum age; the user has been signed out by then.
func (g *Guard) Start(ctx context.Context) error {
	var state lifecycle
	g.loop.Do(func() { state = g.state })
	if state != created {
		return ErrAlreadyStarted
	}

	user, err := g.auth.CurrentUser(ctx)
	if err != nil {
		return errors.Join(ErrNotAuthenticated, err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return ErrNotAuthenticated
	}
	sessionID, loginAt, register := g.resolveSessionID(ctx, user)
	user.AuthenticatedAt = loginAt

	var startErr error
	g.loop.Do(func() {
		if g.state != created {
			startErr = ErrAlreadyStarted
			return
		}
		startErr = g.start(ctx, user, sessionID, register)
	})
	if startErr == nil {
		stopOnCancel := context.AfterFunc(ctx, g.Stop)
		g.loop.Do(func() { g.detach = append(g.detach, func() { stopOnCancel() }) })
	}
	return startErr
}

// resolveSessionID returns the id cached for this tab when it was issued
// for the same login, and stores a fresh one otherwise. register reports
// whether the login still has to be registered. When the auth provider does
// not report a login time, the one encoded in the cached id is kept.
func (g *Guard) resolveSessionID(ctx context.Context, user User) (id string, loginAt time.Time, register bool) {
	loginAt = user.AuthenticatedAt
	if loginAt.IsZero() {
		loginAt = g.clock.Now()
	}
	candidate := registry.NewSessionID(user.ID, loginAt)

	id, created, err := g.tabs.SetOnce(ctx, g.tabID, candidate)
	if err == nil && !created {
		cachedAt, ok := registry.SessionLoginAt(id, user.ID)
		switch {
		case ok && user.AuthenticatedAt.IsZero():
			return id, cachedAt, false
		case ok && cachedAt.UnixMilli() == user.AuthenticatedAt.UnixMilli():
			return id, loginAt, false
		}

		g.logger.InfoContext(ctx, "tab session belongs to another login, replacing")
		if err = g.tabs.Delete(ctx, g.tabID); err == nil {
			id, created, err = g.tabs.SetOnce(ctx, g.tabID, candidate)
		}
	}
	if err != nil {
		g.logger.WarnContext(ctx, "tab store unavailable, registering a new session", logger.Error(err))
		return candidate, loginAt, true
	}
	return id, loginAt, created
}

func (g *Guard) start(ctx context.Context, user User, sessionID string, register bool) error {
	g.state = running
	g.user = user
	g.sessionID = sessionID
	g.ctx, g.cancel = context.WithCancel(context.WithoutCancel(ctx))
	g.logger = g.logger.With(logger.UserID(user.ID), logger.SessionID(sessionID))

	g.idle = timeout.NewIdle(g.loop, g.gate,
		timeout.IdleConfig{Timeout: g.cfg.IdleTimeout, Warning: g.cfg.IdleWarning},
		timeout.WithLogger(g.logger),
		timeout.OnChange(func(timeout.State) { g.presenter.Refresh() }),
		timeout.OnExpire(func(r timeout.Reason) { g.signOut(Reason(r)) }),
	)
	g.absolute = timeout.NewAbsolute(g.loop, g.gate,
		timeout.AbsoluteConfig{MaxAge: g.cfg.MaxAge, Warning: g.cfg.MaxAgeWarning},
		timeout.WithLogger(g.logger),
		timeout.OnChange(func(timeout.State) { g.presenter.Refresh() }),
		timeout.OnExpire(func(r timeout.Reason) { g.signOut(Reason(r)) }),
	)
	g.presenter = warning.NewPresenter(g.idle, g.absolute,
		warning.WithLogger(g.logger),
		warning.OnChange(func(v warning.View) {
			g.publish(Event{Type: EventWarning, Warning: v})
		}),
	)
	g.conflict = conflict.New(g.loop, g.client,
		conflict.Identity{SessionID: sessionID, UserID: user.ID},
		conflict.WithLogger(g.logger),
		conflict.WithTimeout(g.cfg.registryTimeout()),
		conflict.OnChange(func(v conflict.View) {
			g.publish(Event{Type: EventConflict, Conflict: v})
		}),
		conflict.OnSignOut(func(r conflict.Reason) { g.signOut(Reason(r)) }),
	)

	hb, err := heartbeat.New(g.loop, g.cfg.HeartbeatInterval, g.beat, heartbeat.WithLogger(g.logger))
	if err != nil {
		return err
	}
	g.heartbeat = hb

	if err := g.idle.Start(); err != nil {
		return err
	}
	if err := g.absolute.Start(user.AuthenticatedAt); err != nil {
		return err
	}
	if g.state != running {
		return ErrSessionExpired
	}

	g.detach = append(g.detach,
		g.monitor.Subscribe(func(activity.Event) {
			g.loop.Do(func() {
				if g.state == running {
					g.idle.Touch()
				}
			})
		}),
		g.gate.Subscribe(func(s visibility.State) {
			g.loop.Do(func() {
				if g.state != running {
					return
				}
				g.logger.Debug("visibility changed", slog.String("visibility", string(s)))
				g.idle.VisibilityChanged(s == visibility.Visible)
				g.absolute.VisibilityChanged(s == visibility.Visible)
			})
		}),
	)
	if err := g.heartbeat.Start(); err != nil {
		return err
	}

	g.logger.InfoContext(g.ctx, "session guard started",
		slog.Bool("register", register),
		slog.Time("session_started_at", user.AuthenticatedAt),
	)
	if register {
		g.register()
	}
	return nil
}

func (g *Guard) register() {
	req := registry.CreateRequest{
		SessionID: g.sessionID,
		UserID:    g.user.ID,
		UserAgent: g.user.UserAgent,
	}
	dispatch(g, registry.ActionCreate,
		func(ctx context.Context) (registry.CreateResult, error) {
			return g.client.Create(ctx, req)
		},
		func(res registry.CreateResult) {
			g.conflict.Detect(res)
		},
	)
}

func (g *Guard) beat() {
	sessionID, userID := g.sessionID, g.user.ID
	dispatch(g, registry.ActionUpdateActivity,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, g.client.UpdateActivity(ctx, sessionID, userID)
		},
		func(struct{}) {},
	)
}

// dispatch runs fn off the control thread and hands a successful result to
// done on the control thread. The call's context is cancelled once the
// registry timeout elapses on the guard's clock. Failures are logged and
// dropped, as are results arriving after the guard was torn down. It must
// be called on the control thread.
func dispatch[T any](g *Guard, action registry.Action, fn func(context.Context) (T, error), done func(T)) {
	gen := g.gen
	ctx, cancel := context.WithCancelCause(g.ctx)
	g.callSeq++
	id := g.callSeq
	g.deadlines[id] = g.loop.AfterFunc(g.cfg.registryTimeout(), func() {
		delete(g.deadlines, id)
		cancel(ErrRegistryTimeout)
	})

	g.inflight.Add(1)
	g.loop.Defer(func() {
		f := async.Async(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (T, error) {
			return fn(ctx)
		})
		async.Then(f, func(v T, err error) {
			defer g.inflight.Done()
			g.loop.Do(func() {
				if t, ok := g.deadlines[id]; ok {
					t.Stop()
					delete(g.deadlines, id)
				}
				if cause := context.Cause(ctx); errors.Is(cause, ErrRegistryTimeout) {
					err = errors.Join(cause, err)
				}
				cancel(nil)
				if gen != g.gen || g.state != running {
					return
				}
				if err != nil {
					g.logger.WarnContext(ctx, "registry call failed",
						logger.Action(string(action)),
						slog.Bool("unreachable", registry.IsUnreachable(err)),
						logger.Error(err),
					)
					return
				}
				done(v)
			})
		})
	})
}

// RecordActivity reports a raw interaction signal. Signals that do not
// count as activity are ignored. It reports whether the signal qualified.
func (g *Guard) RecordActivity(s activity.Signal) bool {
	return g.monitor.Emit(s)
}

// SetVisibility reports whether the tab is visible. Warning countdowns only
// advance while it is.
func (g *Guard) SetVisibility(s visibility.State) {
	g.gate.Set(s)
}

// Warning returns the warning modal model.
func (g *Guard) Warning() warning.View {
	v := warning.View{Kind: warning.None}
	g.loop.Do(func() {
		if g.state == running {
			v = g.presenter.View()
		}
	})
	return v
}

// Extend handles the warning modal's extend action.
func (g *Guard) Extend() warning.View {
	v := warning.View{Kind: warning.None}
	g.loop.Do(func() {
		if g.state == running {
			v = g.presenter.Extend()
		}
	})
	return v
}

// SignOutNow signs the user out immediately.
func (g *Guard) SignOutNow() {
	g.loop.Do(func() {
		if g.state == running {
			g.presenter.SignOut()
		}
	})
}

// Conflict returns the conflict modal model.
func (g *Guard) Conflict() conflict.View {
	v := conflict.View{Phase: conflict.None}
	g.loop.Do(func() {
		if g.state == running {
			v = g.conflict.View()
		}
	})
	return v
}

// ContinueHere keeps this device and deactivates the others.
func (g *Guard) ContinueHere() bool {
	return g.onConflict(func(c *conflict.Controller) bool { return c.ContinueHere(g.ctx) })
}

// ContinueOnOtherDevice signs out here and leaves the other session alone.
func (g *Guard) ContinueOnOtherDevice() bool {
	return g.onConflict((*conflict.Controller).ContinueOnOtherDevice)
}

// LogoutEverywhere deactivates every session of the user and signs out
// here, even if the registry call fails.
func (g *Guard) LogoutEverywhere() bool {
	return g.onConflict(func(c *conflict.Controller) bool { return c.LogoutEverywhere(g.ctx) })
}

// DismissConflict closes the conflict modal and keeps both sessions.
func (g *Guard) DismissConflict() bool {
	return g.onConflict((*conflict.Controller).Dismiss)
}

func (g *Guard) onConflict(fn func(*conflict.Controller) bool) bool {
	var ok bool
	g.loop.Do(func() {
		if g.state == running {
			ok = fn(g.conflict)
		}
	})
	return ok
}

// Subscribe streams events until ctx is cancelled or the guard stops.
func (g *Guard) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	return g.events.Subscribe(ctx)
}

// SessionID returns the registry session id, empty before Start.
func (g *Guard) SessionID() string {
	var id string
	g.loop.Do(func() { id = g.sessionID })
	return id
}

// SessionStartedAt returns the start of the current absolute window. It
// moves forward only when the user extends an absolute warning.
func (g *Guard) SessionStartedAt() time.Time {
	var at time.Time
	g.loop.Do(func() {
		if g.absolute != nil {
			at = g.absolute.StartedAt()
		}
	})
	return at
}

// Status returns a snapshot of both timeout controllers.
func (g *Guard) Status() Status {
	var s Status
	g.loop.Do(func() {
		if g.idle == nil {
			return
		}
		s = Status{
			Running:      g.state == running,
			Idle:         g.idle.State(),
			Absolute:     g.absolute.State(),
			IdleDeadline: g.idle.Deadline(),
			ExpiresAt:    g.absolute.ExpiresAt(),
		}
	})
	return s
}

// Stop tears the guard down without signing out, for example when the tab
// unmounts. A later Guard for the same tab reuses the session id. Stop is
// idempotent.
func (g *Guard) Stop() {
	var stopping bool
	g.loop.Do(func() {
		switch g.state {
		case stopped:
			return
		case running:
			g.teardown()
			g.logger.InfoContext(g.ctx, "session guard stopped")
		}
		g.state = stopped
		stopping = true
	})
	if !stopping {
		return
	}
	if g.cancel != nil {
		g.cancel()
	}
	g.monitor.Close()
	_ = g.events.Close()
}

// Wait blocks until every registry call started by the guard has returned.
func (g *Guard) Wait() {
	g.inflight.Wait()
	var c *conflict.Controller
	g.loop.Do(func() { c = g.conflict })
	if c != nil {
		c.Wait()
	}
}

// signOut ends the session once. It runs on the control thread; the auth
// provider is called after the control thread is released.
func (g *Guard) signOut(reason Reason) {
	if g.state != running {
		return
	}
	g.state = signedOut
	g.teardown()

	g.logger.InfoContext(g.ctx, "signed out", logger.Reason(string(reason)))
	g.publish(Event{
		Type:    EventSignedOut,
		Reason:  reason,
		Message: reason.Message(g.cfg),
	})

	ctx, cancel := g.ctx, g.cancel
	g.loop.Defer(func() {
		if err := g.auth.SignOut(ctx, reason); err != nil {
			g.logger.ErrorContext(ctx, "auth provider sign-out failed", logger.Error(err))
		}
		if err := g.tabs.Delete(ctx, g.tabID); err != nil {
			g.logger.WarnContext(ctx, "failed to clear tab session", logger.Error(err))
		}
		cancel()
		g.monitor.Close()
		_ = g.events.Close()
	})
}

// teardown cancels every timer, the heartbeat and pending registry results.
func (g *Guard) teardown() {
	g.gen++
	g.idle.Stop()
	g.absolute.Stop()
	g.heartbeat.Stop()
	g.conflict.Reset()
	for id, t := range g.deadlines {
		t.Stop()
		delete(g.deadlines, id)
	}
	for _, fn := range g.detach {
		fn()
	}
	g.detach = nil
}

func (g *Guard) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = g.clock.Now()
	}
	if ev.Type != EventWarning && g.presenter != nil {
		ev.Warning = g.presenter.View()
	}
	if ev.Type != EventConflict && g.conflict != nil {
		ev.Conflict = g.conflict.View()
	}
	if ev.Type == EventSignedOut {
		ev.Warning = warning.View{Kind: warning.None}
		ev.Conflict = conflict.View{Phase: conflict.None}
	}
	_ = g.events.Publish(ev)
}
