// Package state holds the client's in-memory application state: the review
// queue, the session identity, and the project list. Each slice has its own
// action set and pure reducer; every mutation goes through Dispatch, so
// writes are serialized and the rest of the program only ever sees value
// snapshots. Nothing here is persisted — the backend owns the data.
package state

import "sync"

// Action is a marker for the typed actions the reducers accept.
type Action interface {
	isAction()
}

// Store is the root state container. Dispatch and the snapshot accessors
// are safe for concurrent use: the TUI issues backend calls from separate
// goroutines that dispatch their results while the event loop keeps
// reading snapshots.
type Store struct {
	mu       sync.RWMutex
	review   ReviewState
	auth     AuthState
	projects ProjectState
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Dispatch applies one action to whichever slice it belongs to. Unknown
// actions are ignored, matching reducer convention.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch a := action.(type) {
	case ReviewAction:
		s.review = reduceReview(s.review, a)
	case AuthAction:
		s.auth = reduceAuth(s.auth, a)
	case ProjectAction:
		s.projects = reduceProjects(s.projects, a)
	}
}

// Review returns a snapshot of the review slice.
func (s *Store) Review() ReviewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.review
}

// Auth returns a snapshot of the auth slice.
func (s *Store) Auth() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// Projects returns a snapshot of the project slice.
func (s *Store) Projects() ProjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects
}
