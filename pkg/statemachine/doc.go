// Package statemachine provides a small, generic finite state machine used by
// the session timeout and conflict controllers.
//
// States and events are any comparable types, typically string-based enums:
//
//	type Phase string
//	type Trigger string
//
//	m := statemachine.MustNew[Phase, Trigger]("active",
//	    statemachine.WithTransition[Phase, Trigger]("active", "warning", "deadline"),
//	    statemachine.WithTransition[Phase, Trigger]("warning", "active", "extend"),
//	)
//	err := m.Fire(ctx, "deadline", nil)
//
// The machine answers three questions:
//  1. Is a transition registered for this state and event (NoTransitionError)?
//  2. Do its guards allow it (RejectedError)?
//  3. Did its actions succeed (wrapped action error)?
//
// Transitions are stored as map[from][event][]transition. When several
// transitions share a from/event pair, the first one whose guards all pass is
// taken, which allows priority ordering. Observers run after the state has
// changed and outside the internal lock.
package statemachine
