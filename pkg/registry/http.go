package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/requestid"
)

const maxResponseBytes = 1 << 20

// TokenFunc adapts a function returning the current session token to an
// oauth2.TokenSource. It is called for every request, so a refreshed token
// is picked up immediately.
type TokenFunc func() (string, error)

// Token implements oauth2.TokenSource.
func (f TokenFunc) Token() (*oauth2.Token, error) {
	tok, err := f()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, errors.New("registry: empty session token")
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// HTTPClient posts registry operations as JSON to a single endpoint.
type HTTPClient struct {
	cfg     Config
	client  *http.Client
	breaker *CircuitBreaker
	clock   clock.Clock
	logger  *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*httpOptions)

type httpOptions struct {
	base    http.RoundTripper
	tokens  oauth2.TokenSource
	breaker *CircuitBreaker
	clock   clock.Clock
	logger  *slog.Logger
}

// WithTransport sets the underlying round tripper. Defaults to
// http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *httpOptions) {
		if rt != nil {
			o.base = rt
		}
	}
}

// WithTokenSource authenticates every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *httpOptions) { o.tokens = ts }
}

// WithCircuitBreaker replaces the breaker built from Config.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(o *httpOptions) { o.breaker = cb }
}

// WithClock sets the clock used for the breaker and call timing.
func WithClock(c clock.Clock) Option {
	return func(o *httpOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *httpOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewHTTPClient builds a client for cfg. Zero values in cfg take the
// DefaultConfig values.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	o := httpOptions{
		base:   http.DefaultTransport,
		clock:  clock.Real(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var transport http.RoundTripper = requestid.NewTransport(o.base)
	if o.tokens != nil {
		transport = &oauth2.Transport{Source: o.tokens, Base: transport}
	}
	if o.breaker == nil {
		o.breaker = NewCircuitBreaker(o.clock, cfg.FailureThreshold, cfg.SuccessThreshold, cfg.RecoveryTimeout)
	}

	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Transport: transport},
		breaker: o.breaker,
		clock:   o.clock,
		logger:  o.logger.With(logger.Component("registry")),
	}
}

// Breaker exposes the circuit breaker.
func (c *HTTPClient) Breaker() *CircuitBreaker { return c.breaker }

// Create registers the login and reports any other active session.
func (c *HTTPClient) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	if req.SessionID == "" || req.UserID == "" {
		return CreateResult{}, fmt.Errorf("%w: session id and user id are required", ErrInvalidRequest)
	}

	var res CreateResult
	if err := c.do(ctx, createRequest(req), &res); err != nil {
		return CreateResult{}, err
	}
	if res.HasOtherSessions && res.OtherSession == nil {
		return CreateResult{}, fmt.Errorf("%w: hasOtherSessions without otherSessions", ErrInvalidResponse)
	}
	return res, nil
}

// UpdateActivity sends a heartbeat.
func (c *HTTPClient) UpdateActivity(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return fmt.Errorf("%w: session id and user id are required", ErrInvalidRequest)
	}
	return c.do(ctx, Request{Action: ActionUpdateActivity, SessionID: sessionID, UserID: userID}, nil)
}

// DeactivateOther invalidates the user's other sessions.
func (c *HTTPClient) DeactivateOther(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return fmt.Errorf("%w: session id and user id are required", ErrInvalidRequest)
	}
	return c.do(ctx, Request{Action: ActionDeactivateOther, SessionID: sessionID, UserID: userID}, nil)
}

// DeactivateAll invalidates all of the user's sessions.
func (c *HTTPClient) DeactivateAll(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	return c.do(ctx, Request{Action: ActionDeactivateAll, UserID: userID}, nil)
}

func (c *HTTPClient) do(ctx context.Context, body Request, out any) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if !c.breaker.Allow() {
		return ErrCircuitOpen
	}

	if !requestid.Valid(requestid.FromContext(ctx)) {
		ctx = requestid.WithContext(ctx, requestid.New())
	}

	start := c.clock.Now()
	status, err := c.send(ctx, body, out)
	elapsed := c.clock.Now().Sub(start)

	// Refusals and bad payloads mean the registry is up.
	if err == nil || !errors.Is(err, ErrUnreachable) {
		c.breaker.RecordSuccess()
	} else {
		c.breaker.RecordFailure()
	}

	c.logger.DebugContext(ctx, "registry call",
		logger.Action(string(body.Action)),
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.Int("status", status),
		logger.Duration(elapsed),
		logger.Error(err),
	)
	return err
}

func (c *HTTPClient) send(ctx context.Context, body Request, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Join(ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, errors.Join(ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(data))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return resp.StatusCode, nil
}

// Nop is a Client that does nothing. It stands in when no registry is
// configured.
type Nop struct{}

func (Nop) Create(context.Context, CreateRequest) (CreateResult, error) {
	return CreateResult{}, nil
}

func (Nop) UpdateActivity(context.Context, string, string) error { return nil }

func (Nop) DeactivateOther(context.Context, string, string) error { return nil }

func (Nop) DeactivateAll(context.Context, string) error { return nil }

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = Nop{}
)

