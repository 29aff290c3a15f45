// Package warning merges the idle and absolute timeout states into the
// single warning modal shown to the user.
//
// Only one warning is ever visible. When both controllers are warning at the
// same time the idle warning wins and the absolute countdown keeps running
// behind it. Extending from the idle warning also dismisses the absolute
// warning without moving the hard deadline, so the session still ends at
// the maximum age with no further absolute warning.
package warning

import (
	"log/slog"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/timeout"
)

// Kind identifies which controller owns the modal.
type Kind string

const (
	None     Kind = "none"
	Idle     Kind = "idle"
	Absolute Kind = "absolute"
)

// View is the modal model: closed for None, otherwise a countdown owned by
// Kind.
type View struct {
	Kind             Kind `json:"kind"`
	SecondsRemaining int  `json:"seconds_remaining"`
}

// Open reports whether the modal should be shown.
func (v View) Open() bool { return v.Kind != None && v.Kind != "" }

// Select picks the visible warning. Idle takes precedence over absolute.
func Select(idle, absolute timeout.State) View {
	switch {
	case idle.Warning():
		return View{Kind: Idle, SecondsRemaining: idle.SecondsRemaining}
	case absolute.Warning():
		return View{Kind: Absolute, SecondsRemaining: absolute.SecondsRemaining}
	default:
		return View{Kind: None}
	}
}

// IdleTimer is the subset of *timeout.IdleController the presenter drives.
type IdleTimer interface {
	State() timeout.State
	Extend() bool
	SignOutNow() bool
}

// AbsoluteTimer is the subset of *timeout.AbsoluteController the presenter
// drives.
type AbsoluteTimer interface {
	State() timeout.State
	Extend() bool
	DismissWarning() bool
	SignOutNow() bool
}

// Presenter tracks the current View and applies the modal's two actions.
// Like the controllers it must only be used on the control thread.
type Presenter struct {
	idle     IdleTimer
	absolute AbsoluteTimer
	current  View
	onChange func(View)
	logger   *slog.Logger
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.logger = l
		}
	}
}

// OnChange registers a callback invoked whenever the View changes.
func OnChange(fn func(View)) Option {
	return func(p *Presenter) { p.onChange = fn }
}

// NewPresenter creates a presenter over both controllers.
func NewPresenter(idle IdleTimer, absolute AbsoluteTimer, opts ...Option) *Presenter {
	p := &Presenter{
		idle:     idle,
		absolute: absolute,
		current:  View{Kind: None},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.onChange == nil {
		p.onChange = func(View) {}
	}
	p.logger = p.logger.With(logger.Component("warning"))
	return p
}

// View returns the last computed view.
func (p *Presenter) View() View { return p.current }

// Refresh recomputes the view from the controllers and notifies on change.
func (p *Presenter) Refresh() View {
	next := Select(p.idle.State(), p.absolute.State())
	if next == p.current {
		return next
	}
	prev := p.current
	p.current = next
	if prev.Kind != next.Kind {
		p.logger.Debug("warning view changed",
			slog.String("from", string(prev.Kind)),
			logger.Warning(string(next.Kind)),
			logger.SecondsRemaining(next.SecondsRemaining),
		)
	}
	p.onChange(next)
	return next
}

// Extend handles the modal's extend action. The idle deadline is always
// re-armed. An absolute warning that is on screen renews the absolute
// window; one hidden behind an idle warning is only dismissed.
func (p *Presenter) Extend() View {
	shown := p.Refresh().Kind
	p.idle.Extend()
	if shown == Absolute {
		p.absolute.Extend()
	} else {
		p.absolute.DismissWarning()
	}
	p.logger.Info("session extended", logger.Warning(string(shown)))
	return p.Refresh()
}

// SignOut handles the modal's sign-out action.
func (p *Presenter) SignOut() {
	if p.Refresh().Kind == Absolute {
		p.absolute.SignOutNow()
		return
	}
	p.idle.SignOutNow()
}
