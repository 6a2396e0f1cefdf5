package client

import (
	"errors"
	"fmt"
)

// Kind classifies why a call failed.
type Kind string

const (
	KindTransport Kind = "transport"
	KindRemote    Kind = "remote"
	KindMalformed Kind = "malformed"
	KindUnknown   Kind = "unknown"
)

// TransportError means no HTTP reply was obtained: connection refused, DNS
// failure, timeout or cancellation. Its message is the cause's message.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause == nil {
		return "transport error"
	}
	return e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// RemoteError is a non-2xx reply. Body is the diagnostic text the server sent.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError is a 2xx reply whose body does not decode into the
// expected contract.
type MalformedResponseError struct {
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// KindOf reports the failure class of err.
func KindOf(err error) Kind {
	var (
		transportErr *TransportError
		remoteErr    *RemoteError
		malformedErr *MalformedResponseError
	)
	switch {
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &remoteErr):
		return KindRemote
	case errors.As(err, &malformedErr):
		return KindMalformed
	default:
		return KindUnknown
	}
}
