package session_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*session.Session, *scriptedVerifier) {
	t.Helper()
	v := newScriptedVerifier()
	s := session.New(v, nil)
	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})
	return s, v
}

func assertConsistent(t *testing.T, snap session.Snapshot, st session.State) {
	t.Helper()
	set := 0
	if snap.Data != nil {
		set++
	}
	if snap.Error != "" {
		set++
	}
	assert.LessOrEqual(t, set, 1, "data and error both set")
	assert.Equal(t, st.Status == session.StatusPending, snap.Loading)
}

func TestStart_TrimsAndIssuesOneCall(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	require.True(t, s.Start("  https://example.com  "))

	call := v.next(t)
	assert.Equal(t, "https://example.com", call.req.URL)
	v.assertNoCall(t)

	st := s.State()
	assert.Equal(t, session.StatusPending, st.Status)
	assert.Equal(t, "https://example.com", st.Request.URL)
	assert.Equal(t, session.Snapshot{Loading: true}, s.Snapshot())
	call.succeed(response(call.req.URL))
}

func TestStart_EmptyInputIsIgnored(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\t\n"} {
		s, v := newSession(t)
		assert.False(t, s.Start(input))
		v.assertNoCall(t)
		assert.Equal(t, session.StatusIdle, s.State().Status)
		assert.False(t, s.Snapshot().Loading)
	}
}

func TestStart_EmptyInputLeavesFailedStateAlone(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://a")
	v.next(t).fail(errors.New("Network error"))
	s.Wait()

	before := s.State()
	assert.False(t, s.Start("  "))
	assert.Equal(t, before, s.State())
}

func TestResolve_SetsData(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://example.com")
	resp := response("https://example.com")
	v.next(t).succeed(resp)
	s.Wait()

	snap := s.Snapshot()
	assert.Same(t, resp, snap.Data)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Equal(t, client.Kind(""), s.FailureKind())
}

func TestFailure_SurfacesMessage(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://example.com")
	v.next(t).fail(&client.TransportError{Cause: errors.New("Network error")})
	s.Wait()

	assert.Equal(t, session.Snapshot{Error: "Network error"}, s.Snapshot())
	assert.Equal(t, client.KindTransport, s.FailureKind())
}

func TestFailure_KindsAndFallbackMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantKind client.Kind
	}{
		{"remote", &client.RemoteError{StatusCode: 502, Body: "bad gateway"}, "HTTP 502: bad gateway", client.KindRemote},
		{"malformed", &client.MalformedResponseError{Cause: errors.New("eof")}, "malformed response: eof", client.KindMalformed},
		{"empty message", errors.New(""), session.UnknownErrorMessage, client.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, v := newSession(t)
			s.Start("https://example.com")
			v.next(t).fail(tt.err)
			s.Wait()

			assert.Equal(t, tt.wantMsg, s.Snapshot().Error)
			assert.Equal(t, tt.wantKind, s.FailureKind())
		})
	}
}

func TestNilResponseWithoutErrorFails(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://example.com")
	v.next(t).succeed(nil)
	s.Wait()

	assert.Equal(t, session.Snapshot{Error: session.UnknownErrorMessage}, s.Snapshot())
}

func TestSupersededCallIsIgnored(t *testing.T) {
	t.Parallel()

	for _, firstFails := range []bool{false, true} {
		s, v := newSession(t)
		s.Start("https://one")
		first := v.next(t)
		s.Start("https://two")
		second := v.next(t)

		respTwo := response("https://two")
		second.succeed(respTwo)
		// Wait for the second completion before answering the first.
		require.Eventually(t, func() bool { return s.State().Status == session.StatusResolved }, waitTimeout, waitTick)

		if firstFails {
			first.fail(errors.New("late failure"))
		} else {
			first.succeed(response("https://one"))
		}
		s.Wait()

		assert.Same(t, respTwo, s.Snapshot().Data)
	}
}

func TestSupersededCallResolvingFirstIsIgnored(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://one")
	first := v.next(t)
	s.Start("https://two")
	second := v.next(t)

	first.succeed(response("https://one"))
	second.fail(errors.New("Network error"))
	s.Wait()

	assert.Equal(t, session.Snapshot{Error: "Network error"}, s.Snapshot())
}

func TestResetWhilePending(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://example.com")
	call := v.next(t)

	s.Reset()
	assert.Equal(t, session.Snapshot{}, s.Snapshot())

	call.succeed(response("https://example.com"))
	s.Wait()
	assert.Equal(t, session.Snapshot{}, s.Snapshot())
	assert.Equal(t, session.StatusIdle, s.State().Status)
}

func TestResetIsIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t)
	s.Reset()
	s.Reset()
	assert.Equal(t, session.StatusIdle, s.State().Status)
	assert.Equal(t, session.Snapshot{}, s.Snapshot())
}

func TestRetryAfterFailure(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	s.Start("https://example.com")
	v.next(t).fail(errors.New("Network error"))
	s.Wait()

	require.True(t, s.Start("https://example.com"))
	assert.True(t, s.Snapshot().Loading)
	resp := response("https://example.com")
	v.next(t).succeed(resp)
	s.Wait()
	assert.Same(t, resp, s.Snapshot().Data)
}

func TestObserversSeeTransitionsInOrder(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)

	var (
		mu   sync.Mutex
		seen []session.Snapshot
	)
	s.Subscribe(func(snap session.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, snap)
	})

	s.Start("https://example.com")
	resp := response("https://example.com")
	v.next(t).succeed(resp)
	s.Wait()
	s.Reset()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.True(t, seen[0].Loading)
	assert.Same(t, resp, seen[1].Data)
	assert.Equal(t, session.Snapshot{}, seen[2])
}

func TestObserverMayStartAgain(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)
	retried := false
	s.Subscribe(func(snap session.Snapshot) {
		if snap.Error != "" && !retried {
			retried = true
			s.Start("https://retry")
		}
	})

	s.Start("https://example.com")
	v.next(t).fail(errors.New("Network error"))

	call := v.next(t)
	assert.Equal(t, "https://retry", call.req.URL)
	call.succeed(response("https://retry"))
	s.Wait()
	assert.NotNil(t, s.Snapshot().Data)
}

func TestProjectionConsistencyUnderConcurrency(t *testing.T) {
	t.Parallel()

	s, v := newSession(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for call := range v.calls {
			if len(call.req.URL)%2 == 0 {
				call.succeed(response(call.req.URL))
			} else {
				call.fail(errors.New("odd"))
			}
		}
	}()

	urls := []string{"https://a", "https://bb", "https://ccc", "https://dddd"}
	for i := range 200 {
		switch i % 3 {
		case 0, 1:
			s.Start(urls[i%len(urls)])
		default:
			s.Reset()
		}
		st := s.State()
		assertConsistent(t, st.Snapshot(), st)
	}

	s.Wait()
	close(v.calls)
	wg.Wait()

	st := s.State()
	assertConsistent(t, st.Snapshot(), st)
	assert.NotEqual(t, session.StatusPending, st.Status)
}

func TestCloseCancelsInFlightAndRejectsStart(t *testing.T) {
	t.Parallel()

	v := newScriptedVerifier()
	s := session.New(v, nil)
	s.Start("https://example.com")
	v.next(t)

	s.Close()
	s.Wait()

	assert.Equal(t, client.KindTransport, s.FailureKind())
	assert.False(t, s.Start("https://again"))
}
