// Package handlers holds the HTTP handlers of the verification API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/events"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/metrics"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/ogp"
)

// Verifier builds a report for one URL. *ogp.Engine satisfies it.
type Verifier interface {
	Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResponse, error)
}

// OGPHandler serves POST /api/v1/ogp/verify.
type OGPHandler struct {
	verifier  Verifier
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewOGPHandler creates an OGPHandler. publisher and m may be nil.
func NewOGPHandler(verifier Verifier, publisher *events.Publisher, m *metrics.Metrics, log logger.Logger) *OGPHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &OGPHandler{
		verifier:  verifier,
		publisher: publisher,
		metrics:   m,
		logger:    log,
	}
}

// Verify decodes the request, runs the engine and writes the report. Errors
// are plain text.
func (h *OGPHandler) Verify(c *gin.Context) {
	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		c.String(http.StatusBadRequest, "URL is required")
		return
	}

	start := time.Now()
	resp, err := h.verifier.Verify(c.Request.Context(), req)
	elapsed := time.Since(start)

	if err != nil {
		status := statusForError(err)
		h.metrics.ObserveVerification(outcomeForStatus(status), elapsed)
		h.logger.Info("Verification request failed",
			logger.String("url", req.URL),
			logger.Int("status", status),
			logger.Error(err),
		)
		c.String(status, fmt.Sprintf("Error fetching OGP data: %v", err))
		return
	}

	outcome := metrics.OutcomeValid
	if !resp.Validation.IsValid {
		outcome = metrics.OutcomeInvalid
	}
	h.metrics.ObserveVerification(outcome, elapsed)
	h.publisher.PublishAsync(events.NewVerificationEvent(resp))

	c.JSON(http.StatusOK, resp)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ogp.ErrInvalidURL), errors.Is(err, ogp.ErrBlockedHost):
		return http.StatusBadRequest
	case errors.Is(err, ogp.ErrUpstreamStatus), errors.Is(err, ogp.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func outcomeForStatus(status int) string {
	if status == http.StatusBadRequest {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}
