package authstate

import (
	"reflect"
	"sync"
)

// Snapshot is the session store's state tuple: the current session, the
// resolved application-level profile, and whether the initial resolution is
// still pending.
type Snapshot struct {
	Session *Session
	Profile *UserProfile
	Loading bool
}

// Authenticated reports whether a resolved profile is present. A session
// without a profile never counts as authenticated (fail closed).
func (s Snapshot) Authenticated() bool {
	return s.Profile != nil
}

// Store holds exactly one Snapshot: the only process-wide mutable auth state.
// It has a single writer (the Orchestrator, same package) and any number of
// readers. Loading starts true and transitions to false exactly once, on the
// first applied resolution; it never reverts, so background refreshes cannot
// blank the UI.
//
// The single-writer/many-reader policy is enforced with a mutex; readers
// that need change notifications use Subscribe instead of polling.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	subs   map[int]chan Snapshot
	nextID int
}

// NewStore returns a Store in the initial loading state.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{Loading: true},
		subs: map[int]chan Snapshot{},
	}
}

// Current returns a copy of the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers a reader. The returned channel carries the latest
// snapshot after every effective state change, with latest-wins delivery: a
// slow reader never blocks the writer and only ever observes the most recent
// state. The returned function releases the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// apply replaces the snapshot wholesale. Only the orchestrator calls it.
// Duplicate identical states are idempotent no-ops: subscribers are not
// notified and Loading is unaffected.
func (s *Store) apply(session *Session, profile *UserProfile) {
	s.mu.Lock()

	next := Snapshot{
		Session: session,
		Profile: profile,
		Loading: false,
	}

	if s.sameState(next) {
		s.mu.Unlock()
		return
	}

	s.snap = next
	channels := make([]chan Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	for _, ch := range channels {
		// Replace a stale pending value rather than blocking on it.
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}

func (s *Store) sameState(next Snapshot) bool {
	if s.snap.Loading != next.Loading {
		return false
	}
	if !sameSession(s.snap.Session, next.Session) {
		return false
	}
	return reflect.DeepEqual(s.snap.Profile, next.Profile)
}
