// Package timeout enforces the two session-expiry ceilings.
//
// IdleController signs the user out after a period without activity and
// AbsoluteController after a fixed session age. Each surfaces a warning
// grace period with a per-second countdown that only advances while the tab
// is visible. The absolute controller additionally keeps a wall-clock hard
// deadline that fires whatever the tab visibility.
//
// Controllers are not goroutine safe. Every method, and every callback they
// invoke, runs on the control thread provided by the Scheduler, normally an
// *eventloop.Loop:
//
//	loop := eventloop.New(clock.Real())
//	idle := timeout.NewIdle(loop, gate, timeout.IdleConfig{Timeout: 15 * time.Minute, Warning: time.Minute},
//	    timeout.OnChange(render),
//	    timeout.OnExpire(signOut),
//	)
//	loop.Do(func() { _ = idle.Start() })
package timeout
