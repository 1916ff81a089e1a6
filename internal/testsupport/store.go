package testsupport

import (
	"context"
	"testing"

	"filmwatch/internal/config"
	"filmwatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// WatchMovie upserts a movie watch for tests using the provided store.
func WatchMovie(t testing.TB, st *store.Store, id, title string, year int, lang string) *store.Movie {
	t.Helper()

	movie, err := st.UpsertWatch(context.Background(), id, title, year, lang)
	if err != nil {
		t.Fatalf("store.UpsertWatch: %v", err)
	}
	return movie
}

// ObserveMovie links a user to a movie, creating the user when missing.
func ObserveMovie(t testing.TB, st *store.Store, userID int64, lang, movieID string) {
	t.Helper()

	if _, err := st.EnsureUser(context.Background(), userID, lang); err != nil {
		t.Fatalf("store.EnsureUser: %v", err)
	}
	if err := st.Observe(context.Background(), userID, movieID); err != nil {
		t.Fatalf("store.Observe: %v", err)
	}
}
