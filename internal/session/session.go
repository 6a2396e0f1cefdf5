// Package session runs one verification at a time against a Verifier and
// exposes the result as a Snapshot. A newer Start or a Reset supersedes any
// call still in flight; the superseded result is discarded when it arrives.
package session

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

// Verifier performs one verification call. *client.Client satisfies it.
type Verifier interface {
	Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResponse, error)
}

// Observer is called after every transition, in transition order, with the
// resulting snapshot. Observers may call back into the session.
type Observer func(Snapshot)

// Session is the VerificationSession state machine. It is safe for
// concurrent use.
type Session struct {
	verifier Verifier
	log      logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	generation  uint64
	closed      bool
	observers   []Observer
	queue       []Snapshot
	dispatching bool
}

// New creates an idle session. A nil log discards output.
func New(verifier Verifier, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		verifier: verifier,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start submits rawURL after trimming surrounding whitespace. An empty URL is
// ignored and Start returns false. Otherwise the session is Pending when
// Start returns and the call runs in the background.
func (s *Session) Start(rawURL string) bool {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return false
	}

	req := models.VerificationRequest{URL: url}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.generation++
	gen := s.generation
	s.setLocked(State{Status: StatusPending, Request: req})
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Debug("Verification started",
		logger.String("url", url),
		logger.Uint64("generation", gen),
	)

	go s.run(gen, req)
	s.dispatch()
	return true
}

// Reset returns the session to Idle. A call in flight keeps running but its
// result is ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	s.setLocked(State{Status: StatusIdle})
	s.mu.Unlock()

	s.dispatch()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current projection.
func (s *Session) Snapshot() Snapshot {
	return s.State().Snapshot()
}

// FailureKind reports the class of the current failure, or "" when the
// session has not failed.
func (s *Session) FailureKind() client.Kind {
	st := s.State()
	if st.Status != StatusFailed {
		return ""
	}
	return st.Kind
}

// Subscribe registers fn for every later transition.
func (s *Session) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Wait blocks until no call started by this session is running.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels any call in flight and rejects further Starts.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) run(gen uint64, req models.VerificationRequest) {
	defer s.wg.Done()

	resp, err := s.verifier.Verify(s.ctx, req)
	s.complete(gen, req, resp, err)
}

func (s *Session) complete(gen uint64, req models.VerificationRequest, resp *models.VerificationResponse, err error) {
	s.mu.Lock()
	if gen != s.generation {
		current := s.generation
		s.mu.Unlock()
		s.log.Debug("Dropping superseded verification result",
			logger.String("url", req.URL),
			logger.Uint64("generation", gen),
			logger.Uint64("current_generation", current),
		)
		return
	}

	var next State
	switch {
	case err != nil:
		next = State{Status: StatusFailed, Message: failureMessage(err), Kind: client.KindOf(err)}
	case resp == nil:
		next = State{Status: StatusFailed, Message: UnknownErrorMessage, Kind: client.KindUnknown}
	default:
		next = State{Status: StatusResolved, Response: resp}
	}
	s.setLocked(next)
	s.mu.Unlock()

	if next.Status == StatusFailed {
		s.log.Warn("Verification failed",
			logger.String("url", req.URL),
			logger.String("kind", string(next.Kind)),
			logger.Error(err),
		)
	} else {
		s.log.Debug("Verification resolved",
			logger.String("url", req.URL),
			logger.Bool("is_valid", resp.Validation.IsValid),
		)
	}

	s.dispatch()
}

// setLocked is the single mutation point. Callers hold mu.
func (s *Session) setLocked(next State) {
	s.state = next
	s.queue = append(s.queue, next.Snapshot())
}

// dispatch delivers queued snapshots. Only one goroutine delivers at a time,
// so observers see transitions in the order they happened; snapshots queued
// by other goroutines meanwhile are picked up by the active dispatcher.
func (s *Session) dispatch() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.queue) > 0 {
		snap := s.queue[0]
		s.queue = s.queue[1:]
		observers := slices.Clone(s.observers)
		s.mu.Unlock()

		for _, fn := range observers {
			fn(snap)
		}

		s.mu.Lock()
	}

	s.dispatching = false
	s.mu.Unlock()
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}
