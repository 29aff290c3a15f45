package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/useragent"
)

// Action names one of the registry operations on the wire.
type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdateActivity  Action = "update_activity"
	ActionDeactivateOther Action = "deactivate_other"
	ActionDeactivateAll   Action = "deactivate_all"
)

// Client is the registry contract. Implementations must be safe for
// concurrent use.
type Client interface {
	// Create registers a login. It must be called once per session id.
	Create(ctx context.Context, req CreateRequest) (CreateResult, error)
	// UpdateActivity is the heartbeat for sessionID.
	UpdateActivity(ctx context.Context, sessionID, userID string) error
	// DeactivateOther invalidates every session of userID except sessionID.
	DeactivateOther(ctx context.Context, sessionID, userID string) error
	// DeactivateAll invalidates every session of userID, including the
	// caller's. The local token is not revoked.
	DeactivateAll(ctx context.Context, userID string) error
}

// CreateRequest describes a new login.
type CreateRequest struct {
	SessionID string
	UserID    string
	UserAgent string
}

// Session is the registry's read model of another login. It is a snapshot
// and is not kept in sync.
type Session struct {
	ID              string    `json:"id"`
	DeviceType      string    `json:"device_type,omitempty"`
	DeviceName      string    `json:"device_name,omitempty"`
	Browser         string    `json:"browser,omitempty"`
	OS              string    `json:"os,omitempty"`
	IPAddress       string    `json:"ip_address,omitempty"`
	LocationCity    string    `json:"location_city,omitempty"`
	LocationCountry string    `json:"location_country,omitempty"`
	LocationLat     *float64  `json:"location_lat,omitempty"`
	LocationLng     *float64  `json:"location_lng,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// DeviceLabel renders e.g. "Safari on iOS (mobile)".
func (s Session) DeviceLabel() string {
	return useragent.Label(s.Browser, s.OS, s.DeviceType)
}

// LocationLabel renders "City, Country", whichever parts are known.
func (s Session) LocationLabel() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{s.LocationCity, s.LocationCountry} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Unknown location"
	}
	return strings.Join(parts, ", ")
}

// CreateResult is the registry's answer to Create.
type CreateResult struct {
	HasOtherSessions bool
	OtherSession     *Session
}

type createResponse struct {
	HasOtherSessions bool            `json:"hasOtherSessions"`
	OtherSessions    json.RawMessage `json:"otherSessions,omitempty"`
}

// MarshalJSON writes the registry wire shape.
func (r CreateResult) MarshalJSON() ([]byte, error) {
	resp := struct {
		HasOtherSessions bool     `json:"hasOtherSessions"`
		OtherSessions    *Session `json:"otherSessions,omitempty"`
	}{r.HasOtherSessions, r.OtherSession}
	return json.Marshal(resp)
}

// UnmarshalJSON accepts otherSessions as a single object or as a list, in
// which case the first entry is kept.
func (r *CreateResult) UnmarshalJSON(data []byte) error {
	var resp createResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	*r = CreateResult{HasOtherSessions: resp.HasOtherSessions}

	raw := bytes.TrimSpace(resp.OtherSessions)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		var list []Session
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("otherSessions: %w", err)
		}
		if len(list) > 0 {
			r.OtherSession = &list[0]
		}
		return nil
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("otherSessions: %w", err)
	}
	r.OtherSession = &s
	return nil
}

// Request is the JSON body posted to the registry endpoint.
type Request struct {
	Action     Action `json:"action"`
	SessionID  string `json:"sessionId,omitempty"`
	UserID     string `json:"userId"`
	UserAgent  string `json:"userAgent,omitempty"`
	DeviceType string `json:"deviceType,omitempty"`
	DeviceName string `json:"deviceName,omitempty"`
	Browser    string `json:"browser,omitempty"`
	OS         string `json:"os,omitempty"`
}

const sessionIDRandomLen = 16

// NewSessionID derives a session id from the user, the login time and a
// random suffix. It is computed once per login and cached per tab.
func NewSessionID(userID string, loginAt time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDRandomLen]
	return fmt.Sprintf("%s-%d-%s", userID, loginAt.UnixMilli(), random)
}

// SessionLoginAt returns the login time encoded in an id issued by
// NewSessionID for userID. It reports false for ids of other users or
// malformed ids.
func SessionLoginAt(id, userID string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(id, userID+"-")
	if !ok {
		return time.Time{}, false
	}
	ms, random, ok := strings.Cut(rest, "-")
	if !ok || len(random) != sessionIDRandomLen || strings.Contains(random, "-") {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(n), true
}

func createRequest(req CreateRequest) Request {
	r := Request{
		Action:    ActionCreate,
		SessionID: req.SessionID,
		UserID:    req.UserID,
		UserAgent: req.UserAgent,
	}
	if d, err := useragent.Parse(req.UserAgent); err == nil {
		r.DeviceType = d.Type
		r.DeviceName = d.Name()
		r.Browser = d.Browser
		r.OS = d.OS
	}
	return r
}
