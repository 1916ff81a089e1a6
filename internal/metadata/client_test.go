package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmwatch/internal/metadata"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *metadata.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := metadata.New("test-key", server.URL, "en-US", 5*time.Second)
	if err != nil {
		t.Fatalf("metadata.New: %v", err)
	}
	return client
}

func TestSearchReturnsProviderOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "dune" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en-US" {
			t.Errorf("unexpected language %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 1,
			"results": [
				{"imdb_id": "tt1160419", "title": "Dune", "release_date": "2021-10-22"},
				{"imdb_id": "", "title": "Broken Entry"},
				{"imdb_id": "tt15239678", "title": "Dune: Part Two", "release_date": "2024-03-01"}
			],
			"total_results": 3
		}`))
	})

	results, err := client.Search(context.Background(), "dune")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected id-less entry filtered, got %d results", len(results))
	}
	if results[0].ID != "tt1160419" || results[1].ID != "tt15239678" {
		t.Fatalf("provider ordering not preserved: %#v", results)
	}
	if results[0].Year() != 2021 {
		t.Fatalf("unexpected year %d", results[0].Year())
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent for empty query")
	})

	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	if _, err := client.Search(context.Background(), "dune"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestCheckReleasedByStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/tt1160419" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imdb_id": "tt1160419", "title": "Dune", "status": "Released"}`))
	})

	released, err := client.CheckReleased(context.Background(), "tt1160419", "Dune", 2021)
	if err != nil {
		t.Fatalf("CheckReleased failed: %v", err)
	}
	if !released {
		t.Fatal("expected released=true from status field")
	}
}

func TestCheckReleasedByDate(t *testing.T) {
	cases := []struct {
		name     string
		date     string
		expected bool
	}{
		{"past date", "2020-01-01", true},
		{"future date", "2999-01-01", false},
		{"no date", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"imdb_id": "tt1", "title": "X", "release_date": "` + tc.date + `"}`))
			})

			released, err := client.CheckReleased(context.Background(), "tt1", "X", 0)
			if err != nil {
				t.Fatalf("CheckReleased failed: %v", err)
			}
			if released != tc.expected {
				t.Fatalf("expected released=%v for date %q", tc.expected, tc.date)
			}
		})
	}
}

func TestCheckReleasedErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	if _, err := client.CheckReleased(context.Background(), "tt1", "X", 0); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
