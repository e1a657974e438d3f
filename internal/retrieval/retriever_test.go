package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ravebox/discover/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedFetch returns a fetch that blocks until release is closed, ignoring
// cancellation, and echoes the key back as the value.
func gatedFetch(calls *atomic.Int32, release <-chan struct{}) Fetch[string, string] {
	return func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return "value:" + key, nil
	}
}

func waitFor[K comparable, T any](t *testing.T, r *Retriever[K, T]) State[K, T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state := r.Wait(ctx)
	require.NotErrorIs(t, state.Err, context.DeadlineExceeded)
	return state
}

func TestRetrieveMovesToWaitingSynchronously(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := New[string, string]("test", gatedFetch(&calls, release), nil)

	assert.Equal(t, NotRequested, r.Status())

	issued := r.Retrieve(context.Background(), "a")
	assert.True(t, issued)
	assert.Equal(t, Waiting, r.Status())

	close(release)
	state := waitFor(t, r)

	assert.Equal(t, Success, state.Status)
	assert.Equal(t, "a", state.Key)
	assert.Equal(t, "value:a", state.Value)
	assert.NoError(t, state.Err)
}

func TestRetrieveUnchangedInputIssuesNoSecondRequest(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := New[string, string]("test", gatedFetch(&calls, release), nil)

	require.True(t, r.Retrieve(context.Background(), "a"))
	assert.False(t, r.Retrieve(context.Background(), "a"), "no request while waiting")

	close(release)
	waitFor(t, r)

	assert.False(t, r.Retrieve(context.Background(), "a"), "no request after success")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetrieveChangedInputRearms(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	close(release)

	var committed []string
	r := New[string, string]("test", gatedFetch(&calls, release), func(key, value string) {
		committed = append(committed, value)
	})

	require.True(t, r.Retrieve(context.Background(), "a"))
	waitFor(t, r)

	require.True(t, r.Retrieve(context.Background(), "b"))
	state := waitFor(t, r)

	assert.Equal(t, Success, state.Status)
	assert.Equal(t, "value:b", state.Value)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"value:a", "value:b"}, committed)
}

func TestRetrieveNotFound(t *testing.T) {
	fetch := func(_ context.Context, key string) (string, error) {
		return "", fmt.Errorf("review %s: %w", key, domain.ErrNotFound)
	}
	called := false
	r := New[string, string]("test", fetch, func(string, string) { called = true })

	require.True(t, r.Retrieve(context.Background(), "missing"))
	state := waitFor(t, r)

	assert.Equal(t, NotFound, state.Status)
	assert.ErrorIs(t, state.Err, domain.ErrNotFound)
	assert.False(t, called)
}

func TestRetrieveFailedIsTerminal(t *testing.T) {
	var calls atomic.Int32
	fetch := func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		return "", errors.New("connection refused")
	}
	r := New[string, string]("test", fetch, nil)

	require.True(t, r.Retrieve(context.Background(), "a"))
	state := waitFor(t, r)

	assert.Equal(t, Failed, state.Status)
	assert.EqualError(t, state.Err, "connection refused")

	assert.False(t, r.Retrieve(context.Background(), "a"), "failure is not retried")
	assert.Equal(t, int32(1), calls.Load())

	assert.True(t, r.Retrieve(context.Background(), "b"), "new input re-arms")
	waitFor(t, r)
}

func TestAPIErrorIsFailure(t *testing.T) {
	fetch := func(_ context.Context, _ string) (string, error) {
		return "", &domain.APIError{StatusCode: 200, Code: "INVALID_TERM"}
	}
	r := New[string, string]("test", fetch, nil)

	r.Retrieve(context.Background(), "a")
	state := waitFor(t, r)

	assert.Equal(t, Failed, state.Status)
	var apiErr *domain.APIError
	require.ErrorAs(t, state.Err, &apiErr)
	assert.Equal(t, "INVALID_TERM", apiErr.Code)
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	var commits atomic.Int32
	r := New[string, string]("test", gatedFetch(&calls, release), func(string, string) {
		commits.Add(1)
	})

	require.True(t, r.Retrieve(context.Background(), "a"))
	r.Close()

	assert.NotPanics(t, func() { close(release) })
	state := waitFor(t, r)

	assert.Equal(t, Waiting, state.Status)
	assert.ErrorIs(t, state.Err, ErrClosed)
	assert.Empty(t, state.Value)
	assert.Equal(t, int32(0), commits.Load())

	assert.False(t, r.Retrieve(context.Background(), "b"))
}

func TestCloseCancelsInFlightRequest(t *testing.T) {
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	}
	r := New[string, string]("test", fetch, nil)

	require.True(t, r.Retrieve(context.Background(), "a"))
	r.Close()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
	waitFor(t, r)
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	fetch := func(ctx context.Context, key string) (string, error) {
		if key == "slow" {
			<-slow
		}
		return "value:" + key, nil
	}

	var committed []string
	r := New[string, string]("test", fetch, func(_ string, value string) {
		committed = append(committed, value)
	})

	require.True(t, r.Retrieve(context.Background(), "slow"))
	require.True(t, r.Retrieve(context.Background(), "fast"))

	state := waitFor(t, r)
	close(slow)

	assert.Equal(t, Success, state.Status)
	assert.Equal(t, "fast", state.Key)
	assert.Equal(t, "value:fast", state.Value)

	// let the superseded request finish before checking commits
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "value:fast", r.State().Value)
	assert.Equal(t, []string{"value:fast"}, committed)
}

func TestWaitWithoutRequest(t *testing.T) {
	r := New[string, string]("test", func(context.Context, string) (string, error) {
		return "", nil
	}, nil)

	state := r.Wait(context.Background())
	assert.Equal(t, NotRequested, state.Status)
}

func TestWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	var calls atomic.Int32
	r := New[string, string]("test", gatedFetch(&calls, release), nil)
	require.True(t, r.Retrieve(context.Background(), "a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	state := r.Wait(ctx)
	assert.Equal(t, Waiting, state.Status)
	assert.ErrorIs(t, state.Err, context.DeadlineExceeded)
}
