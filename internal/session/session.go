// Package session holds the ephemeral per-user conversation state: cached
// language, pending search candidates, and the currently focused candidate.
// State lives in memory only, scoped to one user's active dialog, and is
// always injected explicitly into the components that read it.
package session

import (
	"errors"
	"sync"

	"filmwatch/internal/metadata"
)

// ErrStaleSelection indicates a selection referenced a candidate list that
// was cleared or never produced, or an index outside the cached list.
var ErrStaleSelection = errors.New("selection does not match the current candidate list")

// Session is one user's conversation scratch state.
type Session struct {
	Language   string
	Candidates []metadata.Result
	Selected   *metadata.Result
}

// Store keeps sessions keyed by user id. Safe for concurrent use across
// users; a single user's conversation is serial by construction.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

func (s *Store) session(userID int64) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	return sess
}

// Get returns a snapshot of the user's session. A user without one gets the
// zero session.
func (s *Store) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}
	}
	snapshot := *sess
	snapshot.Candidates = append([]metadata.Result(nil), sess.Candidates...)
	if sess.Selected != nil {
		selected := *sess.Selected
		snapshot.Selected = &selected
	}
	return snapshot
}

// SetLanguage caches the user's language for the active conversation.
func (s *Store) SetLanguage(userID int64, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).Language = lang
}

// SetCandidates stores a search result list for later selection.
func (s *Store) SetCandidates(userID int64, candidates []metadata.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(userID)
	sess.Candidates = append([]metadata.Result(nil), candidates...)
	sess.Selected = nil
}

// Candidates returns the cached candidate list, or nil when no search has
// happened in this conversation.
func (s *Store) Candidates(userID int64) []metadata.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	return append([]metadata.Result(nil), sess.Candidates...)
}

// Select focuses the k-th cached candidate. Selecting against a cleared or
// shorter list is an error, not a silent no-op.
func (s *Store) Select(userID int64, k int) (metadata.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || len(sess.Candidates) == 0 {
		return metadata.Result{}, ErrStaleSelection
	}
	if k < 0 || k >= len(sess.Candidates) {
		return metadata.Result{}, ErrStaleSelection
	}
	selected := sess.Candidates[k]
	sess.Selected = &selected
	return selected, nil
}

// SelectByID focuses the cached candidate with the given movie id. Buttons
// rendered from an earlier list carry ids, not indexes, so selection by id
// tolerates re-ordering but still fails on a cleared list.
func (s *Store) SelectByID(userID int64, movieID string) (metadata.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || len(sess.Candidates) == 0 {
		return metadata.Result{}, ErrStaleSelection
	}
	for _, candidate := range sess.Candidates {
		if candidate.ID == movieID {
			selected := candidate
			sess.Selected = &selected
			return selected, nil
		}
	}
	return metadata.Result{}, ErrStaleSelection
}

// Selected returns the currently focused candidate.
func (s *Store) Selected(userID int64) (metadata.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || sess.Selected == nil {
		return metadata.Result{}, false
	}
	return *sess.Selected, true
}

// ClearCandidates drops the cached search results and selection, returning
// the conversation to its baseline after a commit.
func (s *Store) ClearCandidates(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.Candidates = nil
		sess.Selected = nil
	}
}

// Clear resets the whole session on flow completion, cancellation, or
// navigation back to the main menu.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
