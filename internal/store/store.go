// Package store is the application state container: one State value split
// into slices, changed only by dispatching typed actions.
package store

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const persistTimeout = 5 * time.Second

// Listener receives the state after every dispatched action
type Listener func(State)

// Persister saves state snapshots outside the process
type Persister interface {
	Save(ctx context.Context, state State) error
}

type Option func(*Store)

// WithPersister saves snapshots in the background. Saves run one at a time
// and always write the most recent state; intermediate states may be skipped.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithState starts the store from a previously saved state
func WithState(state State) Option {
	return func(s *Store) {
		s.state = state
	}
}

type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	persister Persister

	persistMu   sync.Mutex
	persistIdle *sync.Cond
	pending     *pendingSave
	persisting  bool
}

type pendingSave struct {
	state  State
	action Action
}

func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
	}
	s.persistIdle = sync.NewCond(&s.persistMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies action through its slice reducer, then notifies
// listeners synchronously and hands the new state to the persister without
// waiting for it.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	state := s.state
	if s.persister != nil {
		s.schedulePersist(state, action)
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	log.Debugf("dispatched %s/%s", action.Slice(), action.Verb())

	for _, l := range listeners {
		l(state)
	}
}

// schedulePersist replaces the pending snapshot and starts the save loop if
// it is not running. Called with s.mu held so snapshots queue in dispatch order.
func (s *Store) schedulePersist(state State, action Action) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.pending = &pendingSave{state: state, action: action}
	if s.persisting {
		return
	}
	s.persisting = true
	go s.persistLoop()
}

func (s *Store) persistLoop() {
	for {
		s.persistMu.Lock()
		next := s.pending
		s.pending = nil
		if next == nil {
			s.persisting = false
			s.persistIdle.Broadcast()
			s.persistMu.Unlock()
			return
		}
		s.persistMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.persister.Save(ctx, next.state); err != nil {
			log.Warnf("⚠️ Failed to persist state after %s/%s: %v", next.action.Slice(), next.action.Verb(), err)
		}
		cancel()
	}
}

// State returns the current state. The returned value must not be modified.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Flush waits until the latest dispatched state has been handed to the
// persister
func (s *Store) Flush() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	for s.persisting {
		s.persistIdle.Wait()
	}
}
