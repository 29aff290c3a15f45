// Package broadcast fans values out to many subscribers without letting a
// slow subscriber block the publisher.
//
// The session guard publishes every warning, conflict and sign-out event
// through a MemoryBroadcaster; UI adapters subscribe with a context and
// read from Receive until the channel closes:
//
//	sub := b.Subscribe(ctx)
//	for ev := range sub.Receive() {
//	    render(ev)
//	}
//
// A subscriber whose buffer is full misses the value being published and
// keeps its subscription.
package broadcast
