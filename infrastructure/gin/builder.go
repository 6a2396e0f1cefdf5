package gin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
)

// ServerBuilder assembles a Server fluently.
type ServerBuilder struct {
	config       *Config
	logger       logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewServerBuilder starts a builder for serviceName on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config:       NewConfig(serviceName, port),
		healthChecks: make(map[string]HealthChecker),
	}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

func (b *ServerBuilder) WithHost(host string) *ServerBuilder {
	b.config.Host = host
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

// WithTrustedProxies sets the proxies allowed to report client IPs.
func (b *ServerBuilder) WithTrustedProxies(proxies []string) *ServerBuilder {
	b.config.TrustedProxies = proxies
	return b
}

func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithHealthCheck adds a named check to GET /health.
func (b *ServerBuilder) WithHealthCheck(name string, checker HealthChecker) *ServerBuilder {
	b.healthChecks[name] = checker
	return b
}

// WithRoutes sets the service route setup.
func (b *ServerBuilder) WithRoutes(setupRoutes func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setupRoutes
	return b
}

// Build registers health routes ahead of the service routes.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.Must(logger.Config{Development: b.config.Debug})
	}

	checks := b.healthChecks
	if len(checks) == 0 {
		checks = nil
	}

	return NewServer(b.config, b.logger, func(router *gin.Engine) {
		RegisterHealthRoutes(router, b.config.ServiceName, b.config.ServiceVersion, checks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	})
}
