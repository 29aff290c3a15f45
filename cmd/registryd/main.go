// Command registryd serves an in-memory session registry for local
// front-end development. State is lost on restart.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/sessionguard/pkg/config"
	"github.com/dmitrymomot/sessionguard/pkg/httpserver"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/registry/registrytest"
	"github.com/dmitrymomot/sessionguard/pkg/requestid"
)

type Config struct {
	HTTP        httpserver.Config
	Token       string `env:"REGISTRY_TOKEN"`
	Environment string `env:"APP_ENV"`
	LogLevel    string `env:"LOG_LEVEL"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("registryd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	cfg := Config{
		HTTP:        httpserver.DefaultConfig(),
		Environment: logger.EnvDevelopment,
	}
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, "registryd"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	opts := []registrytest.Option{registrytest.WithLogger(log)}
	if cfg.Token != "" {
		opts = append(opts, registrytest.WithToken(cfg.Token))
	} else {
		log.Warn("REGISTRY_TOKEN not set, accepting unauthenticated calls")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, registrytest.New(opts...))
}
