// Package ogp is the verification engine behind the API: it fetches a page,
// extracts its Open Graph tags, validates them and projects them onto each
// platform's display limits.
package ogp

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

// Config tunes the engine. Zero values take the package defaults.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	// AllowPrivateHosts disables the internal-address guard.
	AllowPrivateHosts bool
}

func (c *Config) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultFetchTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Engine produces verification reports. It is safe for concurrent use.
type Engine struct {
	fetcher *fetcher
	log     logger.Logger
	now     func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(cfg Config, log logger.Logger) *Engine {
	cfg.setDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		fetcher: newFetcher(cfg),
		log:     log,
		now:     time.Now,
	}
}

// Verify fetches req.URL and builds its report. Errors wrap ErrInvalidURL,
// ErrBlockedHost, ErrUpstreamStatus or ErrFetch.
func (e *Engine) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResponse, error) {
	start := e.now()

	doc, err := e.fetcher.fetch(ctx, req.URL)
	if err != nil {
		e.log.Warn("Page fetch failed",
			logger.String("url", req.URL),
			logger.Error(err),
		)
		return nil, err
	}

	data := extractOGData(doc)
	resp := &models.VerificationResponse{
		URL:        req.URL,
		OGPData:    data,
		Validation: validate(data),
		Previews:   buildPreviews(data),
		Timestamp:  e.now().UTC().Format(time.RFC3339),
	}

	e.log.Debug("Page verified",
		logger.String("url", req.URL),
		logger.Bool("is_valid", resp.Validation.IsValid),
		logger.Int("warnings", len(resp.Validation.Warnings)),
		logger.Duration("duration", e.now().Sub(start)),
	)
	return resp, nil
}
