package sessionguard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard"
	"github.com/dmitrymomot/sessionguard/pkg/activity"
	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/conflict"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/tabstore"
	"github.com/dmitrymomot/sessionguard/pkg/timeout"
	"github.com/dmitrymomot/sessionguard/pkg/visibility"
	"github.com/dmitrymomot/sessionguard/pkg/warning"
)

var loginAt = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

type signOut struct {
	reason sessionguard.Reason
	at     time.Time
}

type fakeAuth struct {
	mu       sync.Mutex
	clock    clock.Clock
	user     sessionguard.User
	err      error
	signOuts []signOut
}

func (a *fakeAuth) CurrentUser(context.Context) (sessionguard.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user, a.err
}

func (a *fakeAuth) SessionToken(context.Context) (string, error) {
	return "token-1", nil
}

func (a *fakeAuth) SignOut(_ context.Context, r sessionguard.Reason) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts = append(a.signOuts, signOut{reason: r, at: a.clock.Now()})
	return nil
}

func (a *fakeAuth) setUser(u sessionguard.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

func (a *fakeAuth) SignOuts() []signOut {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]signOut(nil), a.signOuts...)
}

// stubRegistry answers immediately, except for actions listed in hang,
// which block until the caller's context is done.
type stubRegistry struct {
	mu     sync.Mutex
	calls  []registry.Action
	create registry.CreateResult
	errs   map[registry.Action]error
	hang   map[registry.Action]bool
}

func (s *stubRegistry) record(ctx context.Context, a registry.Action) error {
	s.mu.Lock()
	s.calls = append(s.calls, a)
	err, hang := s.errs[a], s.hang[a]
	s.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *stubRegistry) Create(ctx context.Context, _ registry.CreateRequest) (registry.CreateResult, error) {
	if err := s.record(ctx, registry.ActionCreate); err != nil {
		return registry.CreateResult{}, err
	}
	return s.create, nil
}

func (s *stubRegistry) UpdateActivity(ctx context.Context, _, _ string) error {
	return s.record(ctx, registry.ActionUpdateActivity)
}

func (s *stubRegistry) DeactivateOther(ctx context.Context, _, _ string) error {
	return s.record(ctx, registry.ActionDeactivateOther)
}

func (s *stubRegistry) DeactivateAll(ctx context.Context, _ string) error {
	return s.record(ctx, registry.ActionDeactivateAll)
}

func (s *stubRegistry) Count(a registry.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == a {
			n++
		}
	}
	return n
}

type harness struct {
	clk    *clock.FakeClock
	auth   *fakeAuth
	client *stubRegistry
	store  tabstore.Store
	guard  *sessionguard.Guard
}

func newHarness(t *testing.T, client *stubRegistry) *harness {
	t.Helper()
	clk := clock.Fake(loginAt)
	h := &harness{
		clk:    clk,
		client: client,
		store:  tabstore.NewMemoryStore(),
		auth: &fakeAuth{
			clock: clk,
			user: sessionguard.User{
				ID:              "u1",
				UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
				AuthenticatedAt: loginAt,
			},
		},
	}
	h.guard = h.mount(t, "tab-1")
	return h
}

func (h *harness) mount(t *testing.T, tabID string) *sessionguard.Guard {
	t.Helper()
	g, err := sessionguard.New(sessionguard.DefaultConfig(), h.auth, h.client,
		sessionguard.WithClock(h.clk),
		sessionguard.WithLogger(logger.Discard()),
		sessionguard.WithTabID(tabID),
		sessionguard.WithTabStore(h.store),
	)
	require.NoError(t, err)
	t.Cleanup(g.Stop)
	return g
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.guard.Start(context.Background()))
	h.guard.Wait()
}

func (h *harness) elapsed() time.Duration { return h.clk.Now().Sub(loginAt) }

func drain(sub interface {
	Receive() <-chan sessionguard.Event
}) []sessionguard.Event {
	var out []sessionguard.Event
	for {
		select {
		case ev, ok := <-sub.Receive():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

var mobileSession = registry.CreateResult{
	HasOtherSessions: true,
	OtherSession: &registry.Session{
		ID:              "u1-0-phone",
		DeviceType:      "mobile",
		DeviceName:      "iPhone",
		Browser:         "Safari",
		OS:              "iOS",
		LocationCity:    "Berlin",
		LocationCountry: "Germany",
	},
}

func TestGuard_IdleWarningAfterFifteenMinutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	sub := h.guard.Subscribe(context.Background())
	h.start(t)

	h.clk.Advance(15*time.Minute - time.Second)
	assert.False(t, h.guard.Warning().Open())

	h.clk.Advance(time.Second)
	assert.Equal(t, warning.View{Kind: warning.Idle, SecondsRemaining: 60}, h.guard.Warning())

	events := drain(sub)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, sessionguard.EventWarning, last.Type)
	assert.Equal(t, warning.Idle, last.Warning.Kind)
}

func TestGuard_ExtendRestartsIdleBudget(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	h.clk.Advance(15*time.Minute + 15*time.Second)
	require.Equal(t, 45, h.guard.Warning().SecondsRemaining)

	v := h.guard.Extend()
	assert.False(t, v.Open())

	st := h.guard.Status()
	assert.Equal(t, timeout.Active, st.Idle.Phase)
	assert.Equal(t, h.clk.Now().Add(15*time.Minute), st.IdleDeadline)

	h.clk.Advance(15*time.Minute - time.Second)
	assert.False(t, h.guard.Warning().Open())
	h.clk.Advance(time.Second)
	assert.Equal(t, warning.Idle, h.guard.Warning().Kind)
}

func TestGuard_ActivityIgnoredDuringWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	h.clk.Advance(15*time.Minute + 10*time.Second)
	assert.True(t, h.guard.RecordActivity(activity.PointerMove))
	assert.False(t, h.guard.RecordActivity("resize"))
	assert.Equal(t, 50, h.guard.Warning().SecondsRemaining)

	h.clk.Advance(50 * time.Second)
	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonIdleTimeout, outs[0].reason)
	assert.Equal(t, loginAt.Add(16*time.Minute), outs[0].at)
	assert.False(t, h.guard.Status().Running)
}

func TestGuard_LogoutEverywhereSignsOutWhenRegistryFails(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{
		create: mobileSession,
		errs: map[registry.Action]error{
			registry.ActionDeactivateAll: errors.Join(registry.ErrUnreachable, context.DeadlineExceeded),
		},
	}
	h := newHarness(t, client)
	sub := h.guard.Subscribe(context.Background())
	h.start(t)

	v := h.guard.Conflict()
	require.True(t, v.Open)
	assert.Equal(t, conflict.Detected, v.Phase)
	assert.Equal(t, "mobile", v.OtherSession.DeviceType)
	assert.Equal(t, "Safari on iOS (mobile)", v.DeviceLabel)
	assert.Equal(t, "Berlin, Germany", v.LocationLabel)

	require.True(t, h.guard.LogoutEverywhere())
	h.guard.Wait()

	assert.Equal(t, 1, client.Count(registry.ActionDeactivateAll))
	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonLogoutEverywhere, outs[0].reason)
	assert.False(t, h.guard.Status().Running)

	events := drain(sub)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, sessionguard.EventSignedOut, last.Type)
	assert.Equal(t, "You were signed out on all devices.", last.Message)
}

func TestGuard_LogoutEverywhereSignsOutWhenRegistryHangs(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{
		create: mobileSession,
		hang:   map[registry.Action]bool{registry.ActionDeactivateAll: true},
	}
	h := newHarness(t, client)
	h.start(t)
	require.True(t, h.guard.Conflict().Open)

	require.True(t, h.guard.LogoutEverywhere())
	h.clk.Advance(registry.DefaultConfig().Timeout - time.Second)
	assert.Empty(t, h.auth.SignOuts())
	assert.Equal(t, conflict.Resolving, h.guard.Conflict().Phase)

	h.clk.Advance(time.Second)
	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonLogoutEverywhere, outs[0].reason)
	assert.Equal(t, loginAt.Add(registry.DefaultConfig().Timeout), outs[0].at)
	assert.False(t, h.guard.Status().Running)

	h.guard.Wait()
	assert.Equal(t, 1, client.Count(registry.ActionDeactivateAll))
	assert.Zero(t, h.clk.Pending())
}

func TestGuard_HungHeartbeatIsCancelled(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{
		hang: map[registry.Action]bool{registry.ActionUpdateActivity: true},
	}
	h := newHarness(t, client)
	h.start(t)

	h.clk.Advance(5 * time.Minute)
	h.guard.RecordActivity(activity.Click)
	h.clk.Advance(registry.DefaultConfig().Timeout)
	h.guard.Wait()

	assert.Equal(t, 1, client.Count(registry.ActionUpdateActivity))
	assert.True(t, h.guard.Status().Running)
}

func TestGuard_ContinueHere(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{create: mobileSession}
	h := newHarness(t, client)
	h.start(t)

	require.True(t, h.guard.ContinueHere())
	h.guard.Wait()

	assert.Equal(t, 1, client.Count(registry.ActionDeactivateOther))
	assert.False(t, h.guard.Conflict().Open)
	assert.Empty(t, h.auth.SignOuts())
	assert.True(t, h.guard.Status().Running)
}

func TestGuard_ContinueOnOtherDevice(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{create: mobileSession}
	h := newHarness(t, client)
	h.start(t)

	require.True(t, h.guard.ContinueOnOtherDevice())
	h.guard.Wait()

	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonOtherDevice, outs[0].reason)
	assert.Zero(t, client.Count(registry.ActionDeactivateOther))
	assert.Zero(t, client.Count(registry.ActionDeactivateAll))
}

func TestGuard_DismissConflictKeepsSession(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{create: mobileSession}
	h := newHarness(t, client)
	h.start(t)

	require.True(t, h.guard.DismissConflict())
	assert.False(t, h.guard.DismissConflict())
	assert.False(t, h.guard.Conflict().Open)
	assert.True(t, h.guard.Status().Running)
}

func TestGuard_AbsoluteExpiryWithContinuousActivity(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	for h.elapsed() < 7*time.Hour+55*time.Minute {
		h.clk.Advance(5 * time.Minute)
		h.guard.RecordActivity(activity.KeyPress)
	}
	assert.Equal(t, warning.View{Kind: warning.Absolute, SecondsRemaining: 300}, h.guard.Warning())

	for h.elapsed() < 8*time.Hour {
		h.clk.Advance(time.Minute)
		h.guard.RecordActivity(activity.PointerMove)
	}

	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonAbsoluteTimeout, outs[0].reason)
	assert.Equal(t, loginAt.Add(8*time.Hour), outs[0].at)
}

func TestGuard_IdleWarningTakesPriorityOverAbsolute(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	for h.elapsed() < 7*time.Hour+40*time.Minute {
		h.clk.Advance(5 * time.Minute)
		h.guard.RecordActivity(activity.KeyPress)
	}
	h.clk.Advance(2 * time.Minute)
	h.guard.RecordActivity(activity.KeyPress)

	h.clk.Advance(13 * time.Minute)
	require.Equal(t, 7*time.Hour+55*time.Minute, h.elapsed())
	assert.Equal(t, warning.View{Kind: warning.Absolute, SecondsRemaining: 300}, h.guard.Warning())

	h.clk.Advance(2 * time.Minute)
	assert.Equal(t, warning.View{Kind: warning.Idle, SecondsRemaining: 60}, h.guard.Warning())
	st := h.guard.Status()
	assert.Equal(t, timeout.Warning, st.Absolute.Phase)
	assert.Equal(t, 180, st.Absolute.SecondsRemaining)

	h.clk.Advance(10 * time.Second)
	assert.Equal(t, warning.View{Kind: warning.Idle, SecondsRemaining: 50}, h.guard.Warning())

	v := h.guard.Extend()
	assert.False(t, v.Open())
	st = h.guard.Status()
	assert.Equal(t, timeout.Active, st.Idle.Phase)
	assert.Equal(t, timeout.Active, st.Absolute.Phase)
	assert.Equal(t, loginAt.Add(8*time.Hour), st.ExpiresAt)
	assert.True(t, h.guard.SessionStartedAt().Equal(loginAt))

	h.clk.Advance(2*time.Minute + 49*time.Second)
	assert.False(t, h.guard.Warning().Open())
	assert.Empty(t, h.auth.SignOuts())

	h.clk.Advance(time.Second)
	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonAbsoluteTimeout, outs[0].reason)
	assert.Equal(t, loginAt.Add(8*time.Hour), outs[0].at)
}

func TestGuard_ShortHideKeepsCountdownCadence(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	h.clk.Advance(15*time.Minute + 500*time.Millisecond)
	h.guard.SetVisibility(visibility.Hidden)
	h.clk.Advance(700 * time.Millisecond)
	h.guard.SetVisibility(visibility.Visible)

	h.clk.Advance(499 * time.Millisecond)
	assert.Equal(t, 60, h.guard.Warning().SecondsRemaining)
	h.clk.Advance(time.Millisecond)
	assert.Equal(t, 59, h.guard.Warning().SecondsRemaining)
}

func TestGuard_AbsoluteExpiryWhileHidden(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)
	h.guard.SetVisibility(visibility.Hidden)

	for h.elapsed() < 8*time.Hour {
		h.clk.Advance(10 * time.Minute)
		h.guard.RecordActivity(activity.Scroll)
	}

	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonAbsoluteTimeout, outs[0].reason)
	assert.Equal(t, loginAt.Add(8*time.Hour), outs[0].at)
}

func TestGuard_HiddenBeforeWarningKeepsDeadline(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	h.clk.Advance(14*time.Minute + 30*time.Second)
	h.guard.SetVisibility(visibility.Hidden)
	h.clk.Advance(29 * time.Second)
	h.guard.SetVisibility(visibility.Visible)

	assert.False(t, h.guard.Warning().Open())
	h.clk.Advance(time.Second)
	assert.Equal(t, warning.View{Kind: warning.Idle, SecondsRemaining: 60}, h.guard.Warning())
}

func TestGuard_CountdownFreezesWhileHidden(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)

	h.clk.Advance(15*time.Minute + 20*time.Second)
	require.Equal(t, 40, h.guard.Warning().SecondsRemaining)

	h.guard.SetVisibility(visibility.Hidden)
	h.clk.Advance(20 * time.Second)
	h.guard.SetVisibility(visibility.Visible)
	assert.Equal(t, 40, h.guard.Warning().SecondsRemaining)

	h.clk.Advance(time.Second)
	assert.Equal(t, 39, h.guard.Warning().SecondsRemaining)
}

func TestGuard_CreateOnceAcrossRemount(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{}
	h := newHarness(t, client)
	h.start(t)
	first := h.guard.SessionID()
	require.NotEmpty(t, first)
	h.guard.Stop()
	assert.Empty(t, h.auth.SignOuts())

	remounted := h.mount(t, "tab-1")
	require.NoError(t, remounted.Start(context.Background()))
	remounted.Wait()

	assert.Equal(t, first, remounted.SessionID())
	assert.Equal(t, 1, client.Count(registry.ActionCreate))

	other := h.mount(t, "tab-2")
	require.NoError(t, other.Start(context.Background()))
	other.Wait()
	assert.NotEqual(t, first, other.SessionID())
	assert.Equal(t, 2, client.Count(registry.ActionCreate))
}

func TestGuard_NewLoginInSameTabRegistersAgain(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{create: mobileSession}
	h := newHarness(t, client)
	h.start(t)
	first := h.guard.SessionID()
	require.True(t, h.guard.DismissConflict())
	h.guard.Stop()

	h.clk.Advance(time.Hour)
	relogin := h.auth.user
	relogin.AuthenticatedAt = h.clk.Now()
	h.auth.setUser(relogin)

	remounted := h.mount(t, "tab-1")
	require.NoError(t, remounted.Start(context.Background()))
	remounted.Wait()

	second := remounted.SessionID()
	assert.NotEqual(t, first, second)
	at, ok := registry.SessionLoginAt(second, "u1")
	require.True(t, ok)
	assert.True(t, at.Equal(relogin.AuthenticatedAt))
	assert.Equal(t, 2, client.Count(registry.ActionCreate))
	assert.True(t, remounted.Conflict().Open)
	assert.True(t, remounted.SessionStartedAt().Equal(relogin.AuthenticatedAt))

	stored, err := h.store.Get(context.Background(), "tab-1")
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestGuard_RemountWithoutLoginTimeKeepsSession(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{}
	h := newHarness(t, client)
	h.start(t)
	first := h.guard.SessionID()
	h.guard.Stop()

	h.clk.Advance(30 * time.Minute)
	u := h.auth.user
	u.AuthenticatedAt = time.Time{}
	h.auth.setUser(u)

	remounted := h.mount(t, "tab-1")
	require.NoError(t, remounted.Start(context.Background()))
	remounted.Wait()

	assert.Equal(t, first, remounted.SessionID())
	assert.Equal(t, 1, client.Count(registry.ActionCreate))
	assert.True(t, remounted.SessionStartedAt().Equal(loginAt))
}

func TestGuard_SignOutClearsTabSession(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{}
	h := newHarness(t, client)
	h.start(t)

	h.guard.SignOutNow()
	h.guard.Wait()

	outs := h.auth.SignOuts()
	require.Len(t, outs, 1)
	assert.Equal(t, sessionguard.ReasonUser, outs[0].reason)

	_, err := h.store.Get(context.Background(), "tab-1")
	assert.ErrorIs(t, err, tabstore.ErrNotFound)

	h.guard.SignOutNow()
	assert.Len(t, h.auth.SignOuts(), 1)
}

func TestGuard_HeartbeatUntilSignOut(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{
		errs: map[registry.Action]error{registry.ActionUpdateActivity: registry.ErrUnreachable},
	}
	h := newHarness(t, client)
	h.start(t)

	for range 2 {
		h.clk.Advance(5 * time.Minute)
		h.guard.RecordActivity(activity.Click)
		h.guard.Wait()
	}
	assert.Equal(t, 2, client.Count(registry.ActionUpdateActivity))
	assert.True(t, h.guard.Status().Running)

	h.guard.SignOutNow()
	h.clk.Advance(time.Hour)
	h.guard.Wait()
	assert.Equal(t, 2, client.Count(registry.ActionUpdateActivity))
}

func TestGuard_RegistryDownDoesNotBlockLogin(t *testing.T) {
	t.Parallel()

	client := &stubRegistry{
		errs: map[registry.Action]error{registry.ActionCreate: registry.ErrCircuitOpen},
	}
	h := newHarness(t, client)
	h.start(t)

	assert.Equal(t, 1, client.Count(registry.ActionCreate))
	assert.False(t, h.guard.Conflict().Open)
	assert.True(t, h.guard.Status().Running)
}

func TestGuard_StopCancelsTimers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	h.start(t)
	h.guard.Stop()
	h.guard.Stop()

	h.clk.Advance(9 * time.Hour)
	assert.Empty(t, h.auth.SignOuts())
	assert.Zero(t, h.clk.Pending())
	assert.False(t, h.guard.Warning().Open())
}

func TestGuard_StartErrors(t *testing.T) {
	t.Parallel()

	t.Run("already started", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, &stubRegistry{})
		h.start(t)
		assert.ErrorIs(t, h.guard.Start(context.Background()), sessionguard.ErrAlreadyStarted)
	})

	t.Run("not authenticated", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, &stubRegistry{})
		h.auth.err = errors.New("no session")
		assert.ErrorIs(t, h.guard.Start(context.Background()), sessionguard.ErrNotAuthenticated)
	})

	t.Run("session already past max age", func(t *testing.T) {
		t.Parallel()
		client := &stubRegistry{}
		h := newHarness(t, client)
		h.clk.Set(loginAt.Add(9 * time.Hour))

		err := h.guard.Start(context.Background())
		assert.ErrorIs(t, err, sessionguard.ErrSessionExpired)
		h.guard.Wait()

		outs := h.auth.SignOuts()
		require.Len(t, outs, 1)
		assert.Equal(t, sessionguard.ReasonAbsoluteTimeout, outs[0].reason)
		assert.Zero(t, client.Count(registry.ActionCreate))
	})
}

func TestGuard_StopOnContextCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &stubRegistry{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.guard.Start(ctx))
	sub := h.guard.Subscribe(context.Background())

	cancel()
	require.Eventually(t, func() bool { return !h.guard.Status().Running }, time.Second, 5*time.Millisecond)

	_, open := <-sub.Receive()
	assert.False(t, open)
	assert.Empty(t, h.auth.SignOuts())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := sessionguard.New(sessionguard.DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, sessionguard.ErrNilAuthProvider)

	cfg := sessionguard.DefaultConfig()
	cfg.IdleWarning = cfg.IdleTimeout
	_, err = sessionguard.New(cfg, &fakeAuth{}, nil)
	assert.ErrorIs(t, err, sessionguard.ErrInvalidConfig)
}
