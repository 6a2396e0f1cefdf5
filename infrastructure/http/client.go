// Package http builds the pooled *http.Client instances shared by the
// verifier: one for the engine's page fetches and one for the API client.
package http

import (
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout               = 30 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultMaxRedirects          = 5
)

// ClientConfig configures NewClient. Zero values fall back to the defaults above.
type ClientConfig struct {
	Timeout               time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	ResponseHeaderTimeout time.Duration
	TLSHandshakeTimeout   time.Duration
	// MaxRedirects caps followed redirects; a negative value disables following.
	MaxRedirects int
	// Dialer replaces the default dialer, e.g. to vet addresses before connecting.
	Dialer *net.Dialer
	// NoProxy ignores HTTP(S)_PROXY so every connection is dialed to the
	// target itself.
	NoProxy bool
}

// NewClient creates an *http.Client with its own pooled transport.
// A nil cfg uses the defaults.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          orDefault(cfg.MaxIdleConns, DefaultMaxIdleConns),
		MaxIdleConnsPerHost:   orDefault(cfg.MaxIdleConnsPerHost, DefaultMaxIdleConnsPerHost),
		IdleConnTimeout:       orDefault(cfg.IdleConnTimeout, DefaultIdleConnTimeout),
		ResponseHeaderTimeout: orDefault(cfg.ResponseHeaderTimeout, DefaultResponseHeaderTimeout),
		TLSHandshakeTimeout:   orDefault(cfg.TLSHandshakeTimeout, DefaultTLSHandshakeTimeout),
		ForceAttemptHTTP2:     true,
	}
	if cfg.NoProxy {
		transport.Proxy = nil
	}
	if cfg.Dialer != nil {
		transport.DialContext = cfg.Dialer.DialContext
	}

	return &http.Client{
		Timeout:       orDefault(cfg.Timeout, DefaultTimeout),
		Transport:     transport,
		CheckRedirect: redirectPolicy(cfg.MaxRedirects),
	}
}

// NewDefaultClient is NewClient(nil).
func NewDefaultClient() *http.Client {
	return NewClient(nil)
}

func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	if maxRedirects < 0 {
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	limit := orDefault(maxRedirects, DefaultMaxRedirects)
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
