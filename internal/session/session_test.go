package session_test

import (
	"errors"
	"testing"

	"filmwatch/internal/metadata"
	"filmwatch/internal/session"
)

func candidates() []metadata.Result {
	return []metadata.Result{
		{ID: "tt1160419", Title: "Dune", ReleaseDate: "2021-10-22"},
		{ID: "tt15239678", Title: "Dune: Part Two", ReleaseDate: "2024-03-01"},
	}
}

func TestSetCandidatesResetsSelection(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetCandidates(1, candidates())

	if _, err := sessions.Select(1, 0); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, ok := sessions.Selected(1); !ok {
		t.Fatal("expected selection to stick")
	}

	sessions.SetCandidates(1, candidates())
	if _, ok := sessions.Selected(1); ok {
		t.Fatal("new candidate list must clear the previous selection")
	}
}

func TestSelectValidatesIndex(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetCandidates(1, candidates())

	if _, err := sessions.Select(1, 5); !errors.Is(err, session.ErrStaleSelection) {
		t.Fatalf("expected ErrStaleSelection for out-of-range index, got %v", err)
	}
	if _, err := sessions.Select(1, -1); !errors.Is(err, session.ErrStaleSelection) {
		t.Fatalf("expected ErrStaleSelection for negative index, got %v", err)
	}

	selected, err := sessions.Select(1, 1)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if selected.ID != "tt15239678" {
		t.Fatalf("unexpected selection %#v", selected)
	}
}

func TestSelectByIDRejectsUnknownMovie(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetCandidates(1, candidates())

	if _, err := sessions.SelectByID(1, "tt0000000"); !errors.Is(err, session.ErrStaleSelection) {
		t.Fatalf("expected ErrStaleSelection, got %v", err)
	}

	selected, err := sessions.SelectByID(1, "tt1160419")
	if err != nil {
		t.Fatalf("SelectByID failed: %v", err)
	}
	if selected.Title != "Dune" {
		t.Fatalf("unexpected selection %#v", selected)
	}
}

func TestSelectOnEmptySession(t *testing.T) {
	sessions := session.NewStore()

	if _, err := sessions.Select(1, 0); !errors.Is(err, session.ErrStaleSelection) {
		t.Fatalf("expected ErrStaleSelection on empty session, got %v", err)
	}
}

func TestCandidatesReturnsCopy(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetCandidates(1, candidates())

	list := sessions.Candidates(1)
	list[0].ID = "mutated"

	fresh := sessions.Candidates(1)
	if fresh[0].ID != "tt1160419" {
		t.Fatal("caller mutation must not leak into the session")
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetCandidates(1, candidates())

	if got := sessions.Candidates(2); len(got) != 0 {
		t.Fatalf("user 2 must have no candidates, got %d", len(got))
	}
}

func TestClearDropsSession(t *testing.T) {
	sessions := session.NewStore()
	sessions.SetLanguage(1, "ru")
	sessions.SetCandidates(1, candidates())
	sessions.Clear(1)

	snapshot := sessions.Get(1)
	if snapshot.Language != "" || len(snapshot.Candidates) != 0 || snapshot.Selected != nil {
		t.Fatalf("expected empty session after Clear, got %#v", snapshot)
	}
}
