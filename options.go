package sessionguard

import (
	"log/slog"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/tabstore"
)

// Option configures a Guard.
type Option func(*Guard)

// WithClock sets the clock driving every timer. Defaults to clock.Real().
func WithClock(c clock.Clock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTabID identifies the browser tab. Guards sharing a tab id and a tab
// store reuse one registry session. Defaults to a random id.
func WithTabID(id string) Option {
	return func(g *Guard) {
		if id != "" {
			g.tabID = id
		}
	}
}

// WithTabStore sets the per-tab session id cache. Defaults to a fresh
// tabstore.MemoryStore, which only survives remounts if shared.
func WithTabStore(s tabstore.Store) Option {
	return func(g *Guard) {
		if s != nil {
			g.tabs = s
		}
	}
}
