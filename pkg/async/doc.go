// Package async runs blocking calls off the control thread and reports
// their outcome back through a generic Future.
//
// Async starts the function on its own goroutine and returns immediately.
// Await blocks, AwaitWithTimeout blocks with a bound, IsComplete polls and
// Then registers a completion callback:
//
//	f := async.Async(ctx, sessionID, func(ctx context.Context, id string) (struct{}, error) {
//	    return struct{}{}, client.DeactivateOther(ctx, id, userID)
//	})
//	async.Then(f, func(_ struct{}, err error) {
//	    loop.Do(func() { controller.resolved(err) })
//	})
//
// A context cancelled before the goroutine starts completes the future with
// the context error.
package async
