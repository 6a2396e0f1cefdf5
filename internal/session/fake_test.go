package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
	"github.com/stretchr/testify/require"
)

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

type outcome struct {
	resp *models.VerificationResponse
	err  error
}

// pendingCall is one Verify invocation waiting for the test to answer it.
type pendingCall struct {
	req   models.VerificationRequest
	reply chan outcome
}

func (c *pendingCall) succeed(resp *models.VerificationResponse) { c.reply <- outcome{resp: resp} }
func (c *pendingCall) fail(err error)                            { c.reply <- outcome{err: err} }

// scriptedVerifier hands every call to the test and blocks until answered.
type scriptedVerifier struct {
	calls chan *pendingCall
}

func newScriptedVerifier() *scriptedVerifier {
	return &scriptedVerifier{calls: make(chan *pendingCall, 16)}
}

func (v *scriptedVerifier) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResponse, error) {
	call := &pendingCall{req: req, reply: make(chan outcome, 1)}
	v.calls <- call

	select {
	case out := <-call.reply:
		return out.resp, out.err
	case <-ctx.Done():
		return nil, &client.TransportError{Cause: ctx.Err()}
	}
}

func (v *scriptedVerifier) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-v.calls:
		return call
	case <-time.After(waitTimeout):
		require.FailNow(t, "expected a verify call")
		return nil
	}
}

func (v *scriptedVerifier) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case call := <-v.calls:
		require.FailNow(t, "unexpected verify call", "url=%q", call.req.URL)
	case <-time.After(20 * time.Millisecond):
	}
}

func response(url string) *models.VerificationResponse {
	return &models.VerificationResponse{
		URL:        url,
		OGPData:    models.OGPData{Title: "Title for " + url},
		Validation: models.ValidationResult{IsValid: true, Warnings: []string{}, Errors: []string{}},
		Timestamp:  "2024-01-01T00:00:00Z",
	}
}
