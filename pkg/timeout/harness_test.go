package timeout_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/eventloop"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/timeout"
	"github.com/dmitrymomot/sessionguard/pkg/visibility"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

type harness struct {
	clk     *clock.FakeClock
	loop    *eventloop.Loop
	gate    *visibility.Gate
	changes []timeout.State
	expired []timeout.Reason
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.Fake(t0)
	return &harness{
		clk:  clk,
		loop: eventloop.New(clk),
		gate: visibility.NewGate(visibility.Visible),
	}
}

func (h *harness) options() []timeout.Option {
	return []timeout.Option{
		timeout.WithLogger(logger.Discard()),
		timeout.OnChange(func(s timeout.State) { h.changes = append(h.changes, s) }),
		timeout.OnExpire(func(r timeout.Reason) { h.expired = append(h.expired, r) }),
	}
}

func (h *harness) do(fn func()) { h.loop.Do(fn) }

func (h *harness) elapsed() time.Duration { return h.clk.Now().Sub(t0) }
