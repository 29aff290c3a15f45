// Package logger builds context-aware slog loggers with functional options
// and provides attribute constructors so every component names fields the
// same way.
//
// New returns a *slog.Logger whose handler runs registered ContextExtractor
// callbacks on every record. A session id stored with WithSession is always
// extracted, so timers and registry calls log under the session they belong
// to without threading the id through every call.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "sessionguard"),
//	    logger.WithLevelName(cfg.LogLevel),
//	)
//	ctx = logger.WithSession(ctx, sessionID)
//	log.InfoContext(ctx, "idle warning shown",
//	    logger.Component("idle"),
//	    logger.SecondsRemaining(60),
//	)
//
// Error and Errors return an empty Attr for nil errors, so
//
//	log.Info("heartbeat sent", logger.Error(err))
//
// needs no nil check.
package logger
