// Package clientip resolves the address a session registry call came from.
//
// FromRequest walks the proxy headers in DefaultHeaders, taking the first
// parseable address, and falls back to the connection's RemoteAddr.
// X-Forwarded-For may hold a list; its first valid entry wins. Middleware
// stores the result in the request context for handlers that record it next
// to the session.
//
// The headers are only trustworthy behind a proxy that overwrites them.
package clientip
