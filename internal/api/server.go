// Package api assembles the verification HTTP server.
package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/handlers"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/metrics"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/middleware"
)

// VerifyPath is the verification endpoint.
const VerifyPath = "/api/v1/ogp/verify"

// Deps are the collaborators the routes need.
type Deps struct {
	OGPHandler *handlers.OGPHandler
	Metrics    *metrics.Metrics
	// RedisPing adds a redis check to /health when set.
	RedisPing func() error
}

// NewServer builds the server. done stops the rate limiter's sweeper.
func NewServer(cfg *config.Config, deps Deps, log logger.Logger, done <-chan struct{}) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithHost(cfg.Service.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithTrustedProxies(cfg.Server.TrustedProxies).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, cfg, deps, done)
		})

	if deps.RedisPing != nil {
		builder = builder.WithHealthCheck("redis", infragin.RedisHealthChecker(deps.RedisPing))
	}

	return builder.Build()
}

// SetupRoutes registers the service routes. Health routes come from the builder.
func SetupRoutes(router *gin.Engine, cfg *config.Config, deps Deps, done <-chan struct{}) {
	router.GET("/", handlers.Root(cfg.Service.Version))

	if deps.Metrics != nil {
		router.GET("/metrics", deps.Metrics.Handler())
	}

	verify := router.Group("")
	if deps.Metrics != nil {
		verify.Use(deps.Metrics.RateLimitObserver())
	}
	verify.Use(middleware.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window(), done))
	verify.POST(VerifyPath, deps.OGPHandler.Verify)
}
