// Package httpserver runs an http.Handler with graceful shutdown. It serves
// the development session registry in cmd/registryd.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, handler); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled, on SIGINT or SIGTERM, or when Shutdown
// is called. Listen failures are wrapped with ErrStart and shutdown failures
// with ErrShutdown.
package httpserver
