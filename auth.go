package sessionguard

import (
	"context"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/registry"
)

// User is the signed-in user as reported by the auth provider.
type User struct {
	ID              string
	UserAgent       string
	AuthenticatedAt time.Time
}

// AuthProvider is the authentication collaborator. The guard never changes
// auth state itself; it only asks the provider to sign out.
type AuthProvider interface {
	// CurrentUser returns the signed-in user.
	CurrentUser(ctx context.Context) (User, error)

	// SessionToken returns the current session token used to authenticate
	// registry calls.
	SessionToken(ctx context.Context) (string, error)

	// SignOut revokes the local token. It is called at most once per Guard.
	SignOut(ctx context.Context, reason Reason) error
}

// NewRegistryClient returns a registry HTTP client that authenticates every
// call with the provider's current session token.
func NewRegistryClient(cfg registry.Config, auth AuthProvider, opts ...registry.Option) (*registry.HTTPClient, error) {
	if auth == nil {
		return nil, ErrNilAuthProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tokens := registry.TokenFunc(func() (string, error) {
		return auth.SessionToken(context.Background())
	})
	opts = append([]registry.Option{registry.WithTokenSource(tokens)}, opts...)
	return registry.NewHTTPClient(cfg, opts...), nil
}
