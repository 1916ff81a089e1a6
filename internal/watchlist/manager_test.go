package watchlist_test

import (
	"context"
	"errors"
	"testing"

	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/session"
	"filmwatch/internal/store"
	"filmwatch/internal/testsupport"
	"filmwatch/internal/watchlist"
)

type fakeOracle struct {
	released map[string]bool
	err      error
}

func (f *fakeOracle) Search(ctx context.Context, query string) ([]metadata.Result, error) {
	return nil, nil
}

func (f *fakeOracle) CheckReleased(ctx context.Context, id, title string, year int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.released[id], nil
}

type managerFixture struct {
	manager  *watchlist.Manager
	store    *store.Store
	sessions *session.Store
	user     *store.User
}

func newFixture(t *testing.T, oracle *fakeOracle) *managerFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sessions := session.NewStore()
	manager := watchlist.NewManager(st, metadata.Providers{"en": oracle}, sessions, logging.NewNop())

	user, err := st.EnsureUser(context.Background(), 1, "en")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	return &managerFixture{manager: manager, store: st, sessions: sessions, user: user}
}

func TestCanAddAllowsUnreleasedUnwatched(t *testing.T) {
	fx := newFixture(t, &fakeOracle{})

	decision, err := fx.manager.CanAdd(context.Background(), fx.user, metadata.Result{ID: "tt1160419", Title: "Dune"})
	if err != nil {
		t.Fatalf("CanAdd failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allowed decision, got %#v", decision)
	}
}

func TestCanAddRejectsReleased(t *testing.T) {
	fx := newFixture(t, &fakeOracle{released: map[string]bool{"tt1160419": true}})

	decision, err := fx.manager.CanAdd(context.Background(), fx.user, metadata.Result{ID: "tt1160419", Title: "Dune"})
	if err != nil {
		t.Fatalf("CanAdd failed: %v", err)
	}
	if decision.Allowed || decision.Reason != watchlist.ReasonAlreadyReleased {
		t.Fatalf("expected already-released rejection, got %#v", decision)
	}
}

func TestCanAddReleasedWinsOverObserving(t *testing.T) {
	// A movie that is both released and already watched must report the
	// release rejection: the checks run in priority order.
	fx := newFixture(t, &fakeOracle{released: map[string]bool{"tt1160419": true}})

	ctx := context.Background()
	testsupport.WatchMovie(t, fx.store, "tt1160419", "Dune", 2021, "en")
	testsupport.ObserveMovie(t, fx.store, fx.user.ID, "en", "tt1160419")

	decision, err := fx.manager.CanAdd(ctx, fx.user, metadata.Result{ID: "tt1160419", Title: "Dune"})
	if err != nil {
		t.Fatalf("CanAdd failed: %v", err)
	}
	if decision.Reason != watchlist.ReasonAlreadyReleased {
		t.Fatalf("expected release rejection to win, got %#v", decision)
	}
}

func TestCanAddRejectsDuplicate(t *testing.T) {
	fx := newFixture(t, &fakeOracle{})

	ctx := context.Background()
	testsupport.WatchMovie(t, fx.store, "tt1160419", "Dune", 2021, "en")
	testsupport.ObserveMovie(t, fx.store, fx.user.ID, "en", "tt1160419")

	decision, err := fx.manager.CanAdd(ctx, fx.user, metadata.Result{ID: "tt1160419", Title: "Dune"})
	if err != nil {
		t.Fatalf("CanAdd failed: %v", err)
	}
	if decision.Allowed || decision.Reason != watchlist.ReasonAlreadyObserving {
		t.Fatalf("expected duplicate rejection, got %#v", decision)
	}
}

func TestCanAddOracleFailureIsError(t *testing.T) {
	fx := newFixture(t, &fakeOracle{err: errors.New("oracle unreachable")})

	_, err := fx.manager.CanAdd(context.Background(), fx.user, metadata.Result{ID: "tt1160419", Title: "Dune"})
	if err == nil {
		t.Fatal("oracle failure must surface as an operation error, not a rejection")
	}
}

func TestCommitPersistsAndClearsSession(t *testing.T) {
	fx := newFixture(t, &fakeOracle{})

	ctx := context.Background()
	fx.sessions.SetCandidates(fx.user.ID, []metadata.Result{{ID: "tt1160419", Title: "Dune", ReleaseDate: "2021-10-22"}})

	movie, err := fx.manager.Commit(ctx, fx.user, metadata.Result{ID: "tt1160419", Title: "Dune", ReleaseDate: "2021-10-22"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if movie.Year != 2021 {
		t.Fatalf("unexpected year %d", movie.Year)
	}
	if !movie.HasLanguage("en") {
		t.Fatalf("expected en in the unreleased set, got %v", movie.UnreleasedLanguages)
	}

	observing, err := fx.store.IsObserving(ctx, fx.user.ID, "tt1160419")
	if err != nil {
		t.Fatalf("IsObserving failed: %v", err)
	}
	if !observing {
		t.Fatal("Commit must link the user to the movie")
	}
	if cached := fx.sessions.Candidates(fx.user.ID); len(cached) != 0 {
		t.Fatalf("Commit must clear candidates, got %#v", cached)
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	fx := newFixture(t, &fakeOracle{})

	ctx := context.Background()
	candidate := metadata.Result{ID: "tt1160419", Title: "Dune", ReleaseDate: "2021-10-22"}
	if _, err := fx.manager.Commit(ctx, fx.user, candidate); err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}
	movie, err := fx.manager.Commit(ctx, fx.user, candidate)
	if err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}
	if len(movie.UnreleasedLanguages) != 1 {
		t.Fatalf("repeat commit must not duplicate languages, got %v", movie.UnreleasedLanguages)
	}

	observed, err := fx.store.ListObserved(ctx, fx.user.ID)
	if err != nil {
		t.Fatalf("ListObserved failed: %v", err)
	}
	if len(observed) != 1 {
		t.Fatalf("repeat commit must not duplicate observations, got %d", len(observed))
	}
}

func TestCommitNormalizesTitle(t *testing.T) {
	fx := newFixture(t, &fakeOracle{})

	movie, err := fx.manager.Commit(context.Background(), fx.user, metadata.Result{ID: "tt0211915", Title: "  Amélie  "})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if movie.Title != "Amelie" {
		t.Fatalf("expected normalized title, got %q", movie.Title)
	}
}
