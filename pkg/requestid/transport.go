package requestid

import "net/http"

// Transport sets Header on outgoing requests that do not carry one.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base. A nil base means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base}
}

// RoundTrip implements http.RoundTripper. The request is cloned before the
// header is set, as RoundTrippers must not modify their input.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if r.Header.Get(Header) != "" {
		return base.RoundTrip(r)
	}

	id := FromContext(r.Context())
	if !Valid(id) {
		id = New()
	}
	r2 := r.Clone(r.Context())
	r2.Header.Set(Header, id)
	return base.RoundTrip(r2)
}
