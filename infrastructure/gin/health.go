package gin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/monitoring"
)

// HealthStatus is the overall or per-check status.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the GET /health body. Status and Timestamp are the
// fields clients rely on; the rest are informational.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one named dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker performs one dependency check.
type HealthChecker func() CheckResult

var startOnce = struct {
	sync.Once
	at time.Time
}{}

// RegisterHealthRoutes adds GET/HEAD /health and GET /health/memory.
func RegisterHealthRoutes(router *gin.Engine, serviceName, version string, checks map[string]HealthChecker) {
	startOnce.Do(func() { startOnce.at = time.Now() })

	router.GET("/health", healthHandler(serviceName, version, checks))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/memory", func(c *gin.Context) {
		monitoring.MemoryHealthHandler(c.Writer, c.Request)
	})
}

func healthHandler(serviceName, version string, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:    HealthStatusHealthy,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   serviceName,
			Version:   version,
			Uptime:    time.Since(startOnce.at).Truncate(time.Second).String(),
		}

		if len(checks) > 0 {
			resp.Checks = make(map[string]CheckResult, len(checks))
			for name, check := range checks {
				result := check()
				resp.Checks[name] = result
				switch {
				case result.Status == HealthStatusUnhealthy:
					resp.Status = HealthStatusUnhealthy
				case result.Status == HealthStatusDegraded && resp.Status == HealthStatusHealthy:
					resp.Status = HealthStatusDegraded
				}
			}
		}

		status := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// RedisHealthChecker reports degraded, not unhealthy, on failure: the event
// stream is optional.
func RedisHealthChecker(ping func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := ping()
		latency := time.Since(start).String()
		if err != nil {
			return CheckResult{Status: HealthStatusDegraded, Message: "Redis connection failed", Latency: latency}
		}
		return CheckResult{Status: HealthStatusHealthy, Message: "Redis connection OK", Latency: latency}
	}
}
