// Package client talks to the OGP verification API. Every call is a single
// HTTP exchange; failures are returned as *TransportError, *RemoteError or
// *MalformedResponseError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	infrahttp "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/http"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

const (
	verifyPath = "/api/v1/ogp/verify"
	healthPath = "/health"
)

// Client is the VerificationClient. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL. A nil httpClient gets the shared default
// transport; the client is never rebuilt per call.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = infrahttp.NewDefaultClient()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Verify submits req and returns the decoded report.
func (c *Client) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp models.VerificationResponse
	if err = c.do(ctx, http.MethodPost, verifyPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var status models.HealthStatus
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Cause: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &TransportError{Cause: fmt.Errorf("read error body: %w", readErr)}
		}
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Cause: fmt.Errorf("read response: %w", err)}
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Cause: err}
	}
	return nil
}
