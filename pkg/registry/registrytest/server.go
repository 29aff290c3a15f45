// Package registrytest provides an in-memory session registry served over
// HTTP. It backs the registry client tests and cmd/registryd; tests serve it
// with httptest.NewServer.
package registrytest

import (
	"cmp"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/requestid"
)

type record struct {
	session registry.Session
	userID  string
	active  bool
}

// Server is an in-memory registry. The zero value is not usable; use New.
type Server struct {
	mu       sync.Mutex
	clock    clock.Clock
	logger   *slog.Logger
	token    string
	sessions map[string]*record
	calls    []registry.Request
	failures map[registry.Action]int
	delays   map[registry.Action]time.Duration
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for created_at and last_activity_at.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithToken requires "Authorization: Bearer <token>" on every call.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Server {
	s := &Server{
		clock:    clock.Real(),
		logger:   logger.Discard(),
		sessions: make(map[string]*record),
		failures: make(map[registry.Action]int),
		delays:   make(map[registry.Action]time.Duration),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", s.handle)
		r.Post("/sessions", s.handle)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail makes every call of action answer with status until cleared with 0.
func (s *Server) Fail(action registry.Action, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, action)
		return
	}
	s.failures[action] = status
}

// Delay holds every call of action for d, or until the client gives up.
func (s *Server) Delay(action registry.Action, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		delete(s.delays, action)
		return
	}
	s.delays[action] = d
}

// Seed adds an active session for userID.
func (s *Server) Seed(userID string, sess registry.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.LastActivityAt.IsZero() {
		sess.LastActivityAt = sess.CreatedAt
	}
	s.sessions[sess.ID] = &record{session: sess, userID: userID, active: true}
}

// Calls returns the recorded requests, optionally filtered by action.
func (s *Server) Calls(actions ...registry.Action) []registry.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]registry.Request, 0, len(s.calls))
	for _, c := range s.calls {
		if len(actions) == 0 || slices.Contains(actions, c.Action) {
			out = append(out, c)
		}
	}
	return out
}

// Active returns the active sessions of userID, most recent activity first.
func (s *Server) Active(userID string) []registry.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(userID, "")
}

func (s *Server) activeLocked(userID, except string) []registry.Session {
	var out []registry.Session
	for id, rec := range s.sessions {
		if rec.userID == userID && rec.active && id != except {
			out = append(out, rec.session)
		}
	}
	slices.SortFunc(out, func(a, b registry.Session) int {
		if c := b.LastActivityAt.Compare(a.LastActivityAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != s.token {
				writeError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req registry.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, req)
	status := s.failures[req.Action]
	delay := s.delays[req.Action]
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "registry request",
		logger.Action(string(req.Action)),
		logger.SessionID(req.SessionID),
		logger.UserID(req.UserID),
	)

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeError(w, status, "injected failure")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	switch req.Action {
	case registry.ActionCreate:
		s.create(w, req, clientip.FromContext(r.Context()))
	case registry.ActionUpdateActivity:
		s.updateActivity(w, req)
	case registry.ActionDeactivateOther:
		s.deactivate(w, req.UserID, req.SessionID)
	case registry.ActionDeactivateAll:
		s.deactivate(w, req.UserID, "")
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (s *Server) create(w http.ResponseWriter, req registry.Request, ip string) {
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	s.mu.Lock()
	now := s.clock.Now()
	others := s.activeLocked(req.UserID, req.SessionID)
	s.sessions[req.SessionID] = &record{
		userID: req.UserID,
		active: true,
		session: registry.Session{
			ID:             req.SessionID,
			DeviceType:     req.DeviceType,
			DeviceName:     req.DeviceName,
			Browser:        req.Browser,
			OS:             req.OS,
			IPAddress:      ip,
			CreatedAt:      now,
			LastActivityAt: now,
		},
	}
	s.mu.Unlock()

	res := registry.CreateResult{HasOtherSessions: len(others) > 0}
	if len(others) > 0 {
		res.OtherSession = &others[0]
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) updateActivity(w http.ResponseWriter, req registry.Request) {
	s.mu.Lock()
	rec, ok := s.sessions[req.SessionID]
	found := ok && rec.userID == req.UserID
	active := found && rec.active
	if active {
		rec.session.LastActivityAt = s.clock.Now()
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

// deactivate is idempotent: repeating it is a successful no-op.
func (s *Server) deactivate(w http.ResponseWriter, userID, keep string) {
	s.mu.Lock()
	n := 0
	for id, rec := range s.sessions {
		if rec.userID == userID && rec.active && id != keep {
			rec.active = false
			n++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"deactivated": n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
