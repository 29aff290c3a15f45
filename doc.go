// Package sessionguard enforces the client-side session lifecycle of a
// signed-in browser tab.
//
// A Guard is created once per authenticated tab. It signs the user out
// after 15 minutes without activity (after a 60 second warning) and when
// the session reaches its 8 hour maximum age (after a 5 minute warning).
// It registers the login with the external session registry, keeps it
// alive with a heartbeat and lets the user resolve a login on another
// device.
//
//	guard, err := sessionguard.New(cfg, auth, client,
//	    sessionguard.WithTabID(tabID),
//	    sessionguard.WithTabStore(store),
//	    sessionguard.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := guard.Start(ctx); err != nil {
//	    return err
//	}
//	defer guard.Stop()
//
//	events := guard.Subscribe(ctx)
//	for ev := range events.Receive() {
//	    render(ev)
//	}
//
// The UI layer reports raw interaction signals with RecordActivity, tab
// visibility with SetVisibility and the user's choices with Extend,
// SignOutNow, ContinueHere, ContinueOnOtherDevice, LogoutEverywhere and
// DismissConflict.
//
// Every state change runs on a single control thread. Registry calls run
// in the background and never delay a timer; their failures are logged and
// otherwise ignored, except that LogoutEverywhere always ends in a local
// sign-out.
package sessionguard
