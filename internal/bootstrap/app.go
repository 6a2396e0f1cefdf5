// Package bootstrap wires configuration, logging and the HTTP server
// together for the serve command.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/api"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/handlers"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/metrics"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/ogp"
)

// Start runs the API server until ctx is cancelled or a shutdown signal
// arrives.
func Start(ctx context.Context, cfg *config.Config) error {
	// Phase 1: logger
	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: metrics and the optional event stream
	m := metrics.New()
	stream := SetupEventPublisher(ctx, cfg, log, m)
	defer stream.Close()

	// Phase 3: engine, handlers and server
	engine := ogp.NewEngine(cfg.EngineOptions(), log)
	ogpHandler := handlers.NewOGPHandler(engine, stream.Publisher, m, log)

	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(cfg, api.Deps{
		OGPHandler: ogpHandler,
		Metrics:    m,
		RedisPing:  stream.Ping,
	}, log, done)

	log.Info("OGP verifier starting",
		logger.String("host", cfg.Service.Host),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("events_enabled", stream.Publisher != nil),
	)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("OGP verifier exited")
	return nil
}
