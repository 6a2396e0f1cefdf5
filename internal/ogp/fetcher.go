package ogp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	infrahttp "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/http"
)

const (
	DefaultUserAgent    = "OGP-Verification-Service/1.0"
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBodyBytes = 2 << 20

	dialTimeout = 5 * time.Second
)

var (
	// ErrFetch wraps failures to obtain the page.
	ErrFetch = errors.New("failed to fetch URL")
	// ErrUpstreamStatus is returned when the page answers with anything but 200.
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// fetcher downloads a page and parses it into a goquery document.
type fetcher struct {
	client            *http.Client
	userAgent         string
	maxBodyBytes      int64
	allowPrivateHosts bool
}

func newFetcher(cfg Config) *fetcher {
	dialer := &net.Dialer{Timeout: dialTimeout}
	if !cfg.AllowPrivateHosts {
		dialer.Control = dialControl
	}

	return &fetcher{
		client: infrahttp.NewClient(&infrahttp.ClientConfig{
			Timeout: cfg.Timeout,
			Dialer:  dialer,
			NoProxy: true,
		}),
		userAgent:         cfg.UserAgent,
		maxBodyBytes:      cfg.MaxBodyBytes,
		allowPrivateHosts: cfg.AllowPrivateHosts,
	}
}

func (f *fetcher) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	parsed, err := validateURLScheme(rawURL)
	if err != nil {
		return nil, err
	}
	if !f.allowPrivateHosts {
		if err = checkHostIP(parsed); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP error: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decode charset: %w", ErrFetch, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %w", ErrFetch, err)
	}
	return doc, nil
}
