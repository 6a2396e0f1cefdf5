package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/verify_response.json")
	require.NoError(t, err)
	return data
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	fixture := loadFixture(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/ogp/verify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.VerificationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", srv.Client())
	resp, err := c.Verify(context.Background(), models.VerificationRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Test Title", resp.OGPData.Title)
	assert.Equal(t, "2024-01-01T00:00:00Z", resp.Timestamp)
	assert.Equal(t, int32(1), calls.Load())
}

func TestVerify_RemoteError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Error fetching OGP data: boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, srv.Client()).Verify(context.Background(), models.VerificationRequest{URL: "https://x"})
	require.Error(t, err)

	var remoteErr *client.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Equal(t, "Error fetching OGP data: boom\n", remoteErr.Body)
	assert.Equal(t, "HTTP 500: Error fetching OGP data: boom\n", err.Error())
	assert.Equal(t, client.KindRemote, client.KindOf(err))
}

func TestVerify_RemoteErrorKeepsLargeBody(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("upstream diagnostic ", 8<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, srv.Client()).Verify(context.Background(), models.VerificationRequest{URL: "https://x"})

	var remoteErr *client.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Len(t, remoteErr.Body, len(body))
	assert.Equal(t, body, remoteErr.Body)
}

func TestVerify_MalformedBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"empty object", "{}"},
		{"partial previews", `{"url":"u","ogp_data":{},"validation":{},"previews":{"twitter":{}},"timestamp":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			resp, err := client.New(srv.URL, srv.Client()).Verify(context.Background(), models.VerificationRequest{URL: "u"})
			assert.Nil(t, resp)

			var malformed *client.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, client.KindMalformed, client.KindOf(err))
		})
	}
}

func TestVerify_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := client.New(addr, nil).Verify(context.Background(), models.VerificationRequest{URL: "u"})

	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "connect")
	assert.Equal(t, client.KindTransport, client.KindOf(err))
}

func TestVerify_ContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.New(srv.URL, srv.Client()).Verify(ctx, models.VerificationRequest{URL: "u"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, client.KindTransport, client.KindOf(err))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"healthy","timestamp":"2024-01-01T00:00:00Z","service":"ogp-verifier"}`)
	}))
	defer srv.Close()

	status, err := client.New(srv.URL, srv.Client()).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "2024-01-01T00:00:00Z", status.Timestamp)
}

func TestKindOf_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, client.KindUnknown, client.KindOf(errors.New("x")))
}
