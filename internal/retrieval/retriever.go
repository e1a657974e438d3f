// Package retrieval runs API reads through an explicit request state machine.
//
// A Retriever tracks one input value at a time. The first Retrieve for a
// value arms the machine and moves it straight to Waiting while exactly one
// fetch runs; the fetch result resolves it to Success, NotFound or Failed.
// Retrieve with the same value afterwards is a no-op, a different value
// re-arms the machine and supersedes whatever was in flight. Close detaches
// the consumer: in-flight requests are cancelled and late responses are
// discarded without touching state.
package retrieval

import (
	"context"
	"errors"
	"sync"

	"ravebox/discover/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ErrClosed is reported by Wait for a retriever closed mid-request
var ErrClosed = errors.New("retriever closed")

// Fetch performs the request for one input value
type Fetch[K comparable, T any] func(ctx context.Context, key K) (T, error)

// State is a point-in-time view of a retriever
type State[K comparable, T any] struct {
	Status Status
	Key    K
	Value  T
	Err    error
}

type Retriever[K comparable, T any] struct {
	name      string
	fetch     Fetch[K, T]
	onSuccess func(key K, value T)

	mu         sync.Mutex
	machine    Machine
	tracking   bool
	key        K
	value      T
	err        error
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	closed     bool
}

// New creates a retriever. onSuccess, when set, is called with every
// committed value, after the state lock is released; it is the hook for
// pushing results into a store.
func New[K comparable, T any](name string, fetch Fetch[K, T], onSuccess func(key K, value T)) *Retriever[K, T] {
	return &Retriever[K, T]{
		name:      name,
		fetch:     fetch,
		onSuccess: onSuccess,
	}
}

// Retrieve tracks key and issues a request when the machine is armed.
// It reports whether a request was issued. The request runs under a
// context derived from ctx.
func (r *Retriever[K, T]) Retrieve(ctx context.Context, key K) bool {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return false
	}

	if !r.tracking || r.key != key {
		r.rearm(key)
	}

	if r.machine.Status() != Requested {
		r.mu.Unlock()
		return false
	}

	if err := r.machine.Begin(); err != nil {
		r.mu.Unlock()
		log.Errorf("%s: %v", r.name, err)
		return false
	}

	reqCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	generation := r.generation
	r.mu.Unlock()

	log.Debugf("%s: requesting %v", r.name, key)
	go r.run(reqCtx, cancel, done, generation, key)
	return true
}

// rearm must be called with mu held
func (r *Retriever[K, T]) rearm(key K) {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	var zero T
	r.tracking = true
	r.key = key
	r.value = zero
	r.err = nil
	r.generation++
	r.machine.Arm()
}

func (r *Retriever[K, T]) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, generation uint64, key K) {
	defer close(done)
	defer cancel()

	value, err := r.fetch(ctx, key)

	r.mu.Lock()
	if r.closed || generation != r.generation {
		r.mu.Unlock()
		log.Debugf("%s: discarding response for %v", r.name, key)
		return
	}

	status := Success
	switch {
	case err == nil:
		r.value = value
	case errors.Is(err, domain.ErrNotFound):
		status = NotFound
		r.err = err
	default:
		status = Failed
		r.err = err
	}

	if finishErr := r.machine.Finish(status); finishErr != nil {
		log.Errorf("%s: %v", r.name, finishErr)
	}
	r.cancel = nil
	onSuccess := r.onSuccess
	r.mu.Unlock()

	switch status {
	case Success:
		if onSuccess != nil {
			onSuccess(key, value)
		}
	case NotFound:
		log.Debugf("%s: nothing found for %v", r.name, key)
	case Failed:
		log.Errorf("%s: request for %v failed: %v", r.name, key, err)
	}
}

// Wait blocks until the current request resolves or ctx is done, and
// returns the resulting state. A retriever that was never asked for
// anything returns immediately. When the tracked key changes during the
// wait, Wait follows the newer request.
func (r *Retriever[K, T]) Wait(ctx context.Context) State[K, T] {
	for {
		r.mu.Lock()
		done, generation := r.done, r.generation
		r.mu.Unlock()

		if done == nil {
			return r.State()
		}

		select {
		case <-ctx.Done():
			state := r.State()
			state.Err = ctx.Err()
			return state
		case <-done:
		}

		r.mu.Lock()
		current := generation == r.generation
		r.mu.Unlock()
		if current {
			return r.State()
		}
	}
}

func (r *Retriever[K, T]) State() State[K, T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := State[K, T]{
		Status: r.machine.Status(),
		Key:    r.key,
		Value:  r.value,
		Err:    r.err,
	}
	if r.closed && state.Status == Waiting {
		state.Err = ErrClosed
	}
	return state
}

func (r *Retriever[K, T]) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Status()
}

// Close detaches the consumer. Any in-flight request is cancelled and its
// response discarded; later Retrieve calls do nothing.
func (r *Retriever[K, T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
