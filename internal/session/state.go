package session

import (
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

// UnknownErrorMessage replaces an empty failure message.
const UnknownErrorMessage = "an unknown error occurred"

// Status is the lifecycle position of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the full session state. Only the fields belonging to Status are set.
type State struct {
	Status Status
	// Request is set while Pending.
	Request models.VerificationRequest
	// Response is set when Resolved.
	Response *models.VerificationResponse
	// Message and Kind are set when Failed.
	Message string
	Kind    client.Kind
}

// Snapshot is what a presenter renders. At most one of Data and Error is set,
// and Loading is true only while a call is pending.
type Snapshot struct {
	Data    *models.VerificationResponse
	Loading bool
	// Error is empty unless the session failed.
	Error string
}

// Snapshot projects the state.
func (st State) Snapshot() Snapshot {
	switch st.Status {
	case StatusPending:
		return Snapshot{Loading: true}
	case StatusResolved:
		return Snapshot{Data: st.Response}
	case StatusFailed:
		return Snapshot{Error: st.Message}
	default:
		return Snapshot{}
	}
}
