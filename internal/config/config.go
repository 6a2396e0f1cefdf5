// Package config holds the verifier's configuration for both the API server
// and the CLI client.
package config

import (
	"net"
	"strings"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/ogp"
)

// Default configuration values.
const (
	defaultServiceName    = "ogp-verifier"
	defaultServiceVersion = "1.0"
	defaultServicePort    = 8080
	defaultServiceHost    = "0.0.0.0"

	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	defaultMaxRequests   = 10
	defaultWindowSeconds = 60

	defaultRedisAddress = "localhost:6379"

	defaultClientBaseURL = "http://localhost:8080"
	defaultClientTimeout = 30 * time.Second
)

// Config is the root configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   logger.Config   `yaml:"logging"`
	Client    ClientConfig    `yaml:"client"`
}

// ServiceConfig identifies the service.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Host    string `env:"OGP_HOST"  yaml:"host"`
	Port    int    `env:"OGP_PORT"  yaml:"port"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `env:"OGP_CORS_ORIGINS" yaml:"cors_origins"`
	// TrustedProxies may set X-Forwarded-For. Empty keys clients on the peer address.
	TrustedProxies []string `env:"OGP_TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// EngineConfig tunes page fetching.
type EngineConfig struct {
	Timeout           time.Duration `env:"OGP_FETCH_TIMEOUT"       yaml:"timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	UserAgent         string        `yaml:"user_agent"`
	AllowPrivateHosts bool          `env:"OGP_ALLOW_PRIVATE_HOSTS" yaml:"allow_private_hosts"`
}

// RateLimitConfig limits verify requests per client IP.
type RateLimitConfig struct {
	MaxRequests   int `yaml:"max_requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RedisConfig enables the verification event stream.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
}

// ClientConfig points the CLI at a running API.
type ClientConfig struct {
	BaseURL string        `env:"OGP_API_URL"        yaml:"base_url"`
	Timeout time.Duration `env:"OGP_CLIENT_TIMEOUT" yaml:"timeout"`
}

// Load loads configuration from path. A missing file yields defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setServerDefaults(&cfg.Server)
	setEngineDefaults(&cfg.Engine)
	setRateLimitDefaults(&cfg.RateLimit)
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	cfg.Logging.SetDefaults()
	setClientDefaults(&cfg.Client)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultServiceVersion
	}
	if svc.Host == "" {
		svc.Host = defaultServiceHost
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setServerDefaults(srv *ServerConfig) {
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = defaultReadTimeout
	}
	if srv.WriteTimeout == 0 {
		srv.WriteTimeout = defaultWriteTimeout
	}
	if srv.IdleTimeout == 0 {
		srv.IdleTimeout = defaultIdleTimeout
	}
	if len(srv.CORSOrigins) == 0 {
		srv.CORSOrigins = []string{"*"}
	}
}

func setEngineDefaults(e *EngineConfig) {
	if e.Timeout == 0 {
		e.Timeout = ogp.DefaultFetchTimeout
	}
	if e.MaxBodyBytes == 0 {
		e.MaxBodyBytes = ogp.DefaultMaxBodyBytes
	}
	if e.UserAgent == "" {
		e.UserAgent = ogp.DefaultUserAgent
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxRequests == 0 {
		rl.MaxRequests = defaultMaxRequests
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setClientDefaults(c *ClientConfig) {
	if c.BaseURL == "" {
		c.BaseURL = defaultClientBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultClientTimeout
	}
}

// EngineOptions converts the engine section for ogp.NewEngine.
func (c *Config) EngineOptions() ogp.Config {
	return ogp.Config{
		Timeout:           c.Engine.Timeout,
		MaxBodyBytes:      c.Engine.MaxBodyBytes,
		UserAgent:         c.Engine.UserAgent,
		AllowPrivateHosts: c.Engine.AllowPrivateHosts,
	}
}

// Validate checks the settings the server needs.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.RateLimit.MaxRequests < 1 {
		return &infraconfig.ValidationError{Field: "rate_limit.max_requests", Message: "must be positive"}
	}
	if c.RateLimit.WindowSeconds < 1 {
		return &infraconfig.ValidationError{Field: "rate_limit.window_seconds", Message: "must be positive"}
	}
	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			return &infraconfig.ValidationError{Field: "server.trusted_proxies", Message: "must be IP addresses or CIDRs"}
		}
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
			return err
		}
	}
	return nil
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}

// ValidateClient checks the settings the CLI client needs.
func (c *Config) ValidateClient() error {
	return infraconfig.ValidateBaseURL("client.base_url", c.Client.BaseURL)
}
