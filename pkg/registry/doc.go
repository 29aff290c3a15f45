// Package registry talks to the remote session registry that tracks which
// devices hold an active session for a user.
//
// The registry is best-effort. Every operation returns an error the caller is
// expected to log and discard: a failing registry must never block a login or
// keep a user signed in. Errors are classified with IsUnreachable, so callers
// can tell an outage (network errors, 5xx, timeouts, an open circuit) from a
// request the registry refused.
//
//	client := registry.NewHTTPClient(cfg,
//	    registry.WithTokenSource(registry.TokenFunc(auth.SessionToken)),
//	)
//	res, err := client.Create(ctx, registry.CreateRequest{
//	    SessionID: registry.NewSessionID(user.ID, user.AuthenticatedAt),
//	    UserID:    user.ID,
//	    UserAgent: user.UserAgent,
//	})
package registry
