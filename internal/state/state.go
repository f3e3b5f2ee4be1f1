// Package state owns the shared application state and the only sanctioned
// path for background work to affect the UI. Workers mutate state through an
// exclusive lock and deliver UI-visible effects through Present, which
// no-ops once the presentation loop has been torn down.
package state

import "sync"

// Guest is the implicit namespace used when nobody is logged in.
const Guest = "guest"

// Page enumerates the dashboard pages.
type Page int

// Dashboard pages.
const (
	PageWeather Page = iota
	PageNews
	PageSettings
	PageAccounts
)

// AppState is the singleton mutable state. Only the Synchronizer holds a
// reference; everything else works on copies.
type AppState struct {
	LoggedIn  bool
	Page      Page
	ClockText string

	// User is nil for the implicit guest session.
	User *string
}

// Sink delivers one message to the presentation loop, in submission order.
type Sink func(msg any)

// Synchronizer serializes all AppState mutation and marshals UI effects onto
// the presentation loop.
type Synchronizer struct {
	mu sync.Mutex
	st AppState

	sinkMu sync.RWMutex
	sink   Sink
}

// New creates a synchronizer with the given initial state.
func New(initial AppState) *Synchronizer {
	return &Synchronizer{st: initial}
}

// Mutate applies fn to the state under the exclusive lock. fn must not block
// on I/O; in particular it must never await the network.
func (s *Synchronizer) Mutate(fn func(*AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// Snapshot returns a copy of the current state. The copy shares nothing
// mutable with the original.
func (s *Synchronizer) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st
	if s.st.User != nil {
		u := *s.st.User
		snap.User = &u
	}
	return snap
}

// CurrentUser returns the active user identity, or Guest when nobody is
// logged in.
func (s *Synchronizer) CurrentUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.User == nil {
		return Guest
	}
	return *s.st.User
}

// SetUser records the active user; nil logs out to the guest namespace.
func (s *Synchronizer) SetUser(user *string) {
	s.Mutate(func(st *AppState) {
		if user == nil {
			st.User = nil
			st.LoggedIn = false
			return
		}
		u := *user
		st.User = &u
		st.LoggedIn = true
	})
}

// Attach connects the presentation loop. Effects presented before Attach are
// dropped, matching startup where the UI does not exist yet.
func (s *Synchronizer) Attach(sink Sink) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sink = sink
}

// Release disconnects the presentation loop. Present becomes a silent no-op;
// suspended background work can complete without acting on a dead UI.
func (s *Synchronizer) Release() {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sink = nil
}

// Present delivers msg to the presentation loop exactly once, or not at all
// when the loop is gone. It never blocks on state and never panics.
func (s *Synchronizer) Present(msg any) {
	s.sinkMu.RLock()
	sink := s.sink
	s.sinkMu.RUnlock()

	if sink != nil {
		sink(msg)
	}
}
