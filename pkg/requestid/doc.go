// Package requestid correlates session registry calls across the client and
// the registry service.
//
// Transport stamps every outgoing request with an X-Request-ID header, taking
// the id from the request context when one is set and generating a UUID
// otherwise. Middleware reads the header on the service side, replaces
// missing or malformed ids, stores the id in the request context and echoes it
// in the response.
//
//	client := &http.Client{Transport: requestid.NewTransport(nil)}
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
// LoggerExtractor plugs into logger.WithContextExtractors so that every log
// record written with the request context carries a request_id attribute.
package requestid
