package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/muurk/customers/internal/logging"
)

// ErrClosed is returned by operations on a store that has been torn down
var ErrClosed = errors.New("store closed")

// Status identifies which variant a Snapshot holds
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

// String returns a lowercase name for the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Snapshot is the remote state at one point in time. Data is only set for
// StatusSuccess and Err only for StatusFailure.
type Snapshot[T any] struct {
	Status Status
	Data   T
	Err    error

	// Seq is the sequence number of the response that produced this
	// snapshot, 0 before any response was accepted.
	Seq uint64

	// Revalidating is true while the most recently issued request has not
	// completed. It never changes Status.
	Revalidating bool
}

// HasData reports whether the snapshot holds a successful response
func (s Snapshot[T]) HasData() bool {
	return s.Status == StatusSuccess
}

// Stats counts requests through the store
type Stats struct {
	Issued    uint64
	Accepted  uint64
	Discarded uint64
}

// FetchFunc loads the authoritative value for a store
type FetchFunc[T any] func(ctx context.Context) (T, error)

type waiter[T any] struct {
	seq uint64
	ch  chan Snapshot[T]
}

// Store caches the last response of one remote resource.
//
// Every request gets a sequence number from a monotonically increasing
// counter. A response is accepted only when its number equals the latest
// issued one; older responses are dropped on arrival, so out-of-order
// completions never regress the state.
type Store[T any] struct {
	key   string
	fetch FetchFunc[T]

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	snap      Snapshot[T]
	issued    uint64
	settled   uint64
	stats     Stats
	mounted   bool
	closed    bool
	listeners map[int]func(Snapshot[T])
	nextID    int
	waiters   []waiter[T]

	// notifyMu serializes listener calls so they observe transitions in order
	notifyMu sync.Mutex
}

// New creates a store for key. No request is made until Mount.
func New[T any](key string, fetch FetchFunc[T]) *Store[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store[T]{
		key:       key,
		fetch:     fetch,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]func(Snapshot[T])),
	}
}

// Key returns the cache key, usually the endpoint URL
func (s *Store[T]) Key() string {
	return s.key
}

// Snapshot returns the current state
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Stats returns request counters
func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Mount issues the initial request and moves the store from idle to
// loading. Only the first call has an effect.
func (s *Store[T]) Mount() {
	s.mu.Lock()
	if s.mounted || s.closed {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.snap.Status = StatusLoading
	seq := s.issueLocked()
	s.unlockAndNotify()

	go s.run(seq)
}

// Revalidate re-issues the request regardless of the current state and
// returns its sequence number. It returns 0 when the store is closed.
func (s *Store[T]) Revalidate() uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.mounted = true
	if s.snap.Status == StatusIdle {
		s.snap.Status = StatusLoading
	}
	seq := s.issueLocked()
	s.unlockAndNotify()

	go s.run(seq)
	return seq
}

// RevalidateWait issues a revalidation and blocks until the store has
// settled on a response at least as new as it.
func (s *Store[T]) RevalidateWait(ctx context.Context) (Snapshot[T], error) {
	seq := s.Revalidate()
	if seq == 0 {
		return Snapshot[T]{}, ErrClosed
	}
	return s.Wait(ctx, seq)
}

// Wait blocks until a response with sequence number seq or later has been
// accepted, returning the snapshot it produced or the newest one.
func (s *Store[T]) Wait(ctx context.Context, seq uint64) (Snapshot[T], error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot[T]{}, ErrClosed
	}
	if s.settled >= seq {
		snap := s.snap
		s.mu.Unlock()
		return snap, nil
	}
	ch := make(chan Snapshot[T], 1)
	s.waiters = append(s.waiters, waiter[T]{seq: seq, ch: ch})
	s.mu.Unlock()

	select {
	case snap, ok := <-ch:
		if !ok {
			return Snapshot[T]{}, ErrClosed
		}
		return snap, nil
	case <-ctx.Done():
		return Snapshot[T]{}, ctx.Err()
	}
}

// Subscribe registers fn to be called after every state change. Calls are
// serialized and in transition order. fn must not block or call back into
// Mount/Revalidate; reading Snapshot is fine.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close tears the store down. In-flight requests are cancelled, responses
// that still arrive are ignored, and pending waiters get ErrClosed.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, w := range s.waiters {
		close(w.ch)
	}
	s.waiters = nil
	s.listeners = map[int]func(Snapshot[T]){}
	s.mu.Unlock()

	s.cancel()
}

// issueLocked allocates the next sequence number. Caller holds mu.
func (s *Store[T]) issueLocked() uint64 {
	s.issued++
	s.stats.Issued++
	s.snap.Revalidating = true
	return s.issued
}

func (s *Store[T]) run(seq uint64) {
	data, err := s.fetch(s.ctx)
	s.resolve(seq, data, err)
}

// resolve applies the response for seq if it is still the latest request.
// It reports whether the response was accepted.
func (s *Store[T]) resolve(seq uint64, data T, err error) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if seq != s.issued {
		s.stats.Discarded++
		s.mu.Unlock()
		logging.LogStoreTransition(s.key, seq, "", false)
		return false
	}

	next := Snapshot[T]{Seq: seq}
	if err != nil {
		next.Status = StatusFailure
		next.Err = err
	} else {
		next.Status = StatusSuccess
		next.Data = data
	}
	s.snap = next
	s.settled = seq
	s.stats.Accepted++

	remaining := s.waiters[:0]
	for _, w := range s.waiters {
		if w.seq <= seq {
			w.ch <- next
			close(w.ch)
			continue
		}
		remaining = append(remaining, w)
	}
	s.waiters = remaining

	logging.LogStoreTransition(s.key, seq, next.Status.String(), true)
	s.unlockAndNotify()
	return true
}

// unlockAndNotify releases mu and delivers the current snapshot to the
// listeners. notifyMu is taken before mu is released so a later
// transition cannot overtake this one.
func (s *Store[T]) unlockAndNotify() {
	snap := s.snap
	fns := make([]func(Snapshot[T]), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
