package registrytest_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/registry"
	"github.com/dmitrymomot/sessionguard/pkg/registry/registrytest"
)

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()
	srv := registrytest.New()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusBadRequest, post(t, srv, `{"action":"explode","userId":"u"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, `{"action":"create","userId":"u"}`).Code)
	assert.Equal(t, http.StatusNotFound, post(t, srv, `{"action":"update_activity","sessionId":"nope","userId":"u"}`).Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("action=create"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestServer_CreateAndHeartbeat(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.Fake(start)
	srv := registrytest.New(registrytest.WithClock(clk))

	rec := post(t, srv, `{"action":"create","sessionId":"a","userId":"u","deviceType":"desktop"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasOtherSessions":false}`, rec.Body.String())

	clk.Advance(5 * time.Minute)
	rec = post(t, srv, `{"action":"update_activity","sessionId":"a","userId":"u"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	active := srv.Active("u")
	require.Len(t, active, 1)
	assert.Equal(t, start, active[0].CreatedAt)
	assert.Equal(t, start.Add(5*time.Minute), active[0].LastActivityAt)

	rec = post(t, srv, `{"action":"create","sessionId":"b","userId":"u"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasOtherSessions":true`)
	assert.Contains(t, rec.Body.String(), `"device_type":"desktop"`)

	assert.Len(t, srv.Calls(), 3)
	assert.Len(t, srv.Calls(registry.ActionCreate), 2)
}

func TestServer_InjectedFailure(t *testing.T) {
	t.Parallel()
	srv := registrytest.New()

	srv.Fail(registry.ActionCreate, http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, post(t, srv, `{"action":"create","sessionId":"a","userId":"u"}`).Code)
	assert.Empty(t, srv.Active("u"))

	srv.Fail(registry.ActionCreate, 0)
	assert.Equal(t, http.StatusOK, post(t, srv, `{"action":"create","sessionId":"a","userId":"u"}`).Code)
	assert.Len(t, srv.Active("u"), 1)
}
