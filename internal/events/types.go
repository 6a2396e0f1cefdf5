// Package events publishes completed verifications to a Redis stream so
// other services can follow what was checked.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

// StreamName is the Redis stream for verification events.
const StreamName = "ogp:verifications"

// EventType names what happened.
type EventType string

// VerificationCompleted is emitted for every report the API returns.
const VerificationCompleted EventType = "VERIFICATION_COMPLETED"

// VerificationEvent is the stream envelope.
type VerificationEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	EventType    EventType `json:"event_type"`
	URL          string    `json:"url"`
	IsValid      bool      `json:"is_valid"`
	WarningCount int       `json:"warning_count"`
	ErrorCount   int       `json:"error_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewVerificationEvent summarises resp.
func NewVerificationEvent(resp *models.VerificationResponse) VerificationEvent {
	return VerificationEvent{
		EventID:      uuid.New(),
		EventType:    VerificationCompleted,
		URL:          resp.URL,
		IsValid:      resp.Validation.IsValid,
		WarningCount: len(resp.Validation.Warnings),
		ErrorCount:   len(resp.Validation.Errors),
		Timestamp:    time.Now().UTC(),
	}
}
