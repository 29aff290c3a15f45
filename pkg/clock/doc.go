// Package clock provides an injectable time source for the session timers.
//
// Production code receives Real(); tests receive Fake() and move time forward
// explicitly with Advance. Only the two operations the timers need are
// exposed: reading the current time and scheduling a callback.
//
// # Usage
//
//	c := clock.Fake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
//	c.AfterFunc(15*time.Minute, func() { fmt.Println("idle") })
//	c.Advance(15 * time.Minute) // prints "idle"
//
// # Fake semantics
//
// Fake fires due callbacks one at a time in deadline order, moving its
// current time to each callback's deadline before invoking it. A callback
// that schedules a follow-up timer therefore schedules it relative to its own
// deadline, which keeps chained one-second countdown ticks exact across a
// single large Advance.
package clock
