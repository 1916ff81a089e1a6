package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/search"
	"filmwatch/internal/session"
	"filmwatch/internal/testsupport"
	"filmwatch/internal/watchlist"
)

// pollingAPI hands out one batch of updates, then blocks until the poll
// context is cancelled.
type pollingAPI struct {
	fakeAPI

	mu      sync.Mutex
	batch   []Update
	offsets []int64
}

func (p *pollingAPI) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	p.mu.Lock()
	p.offsets = append(p.offsets, offset)
	batch := p.batch
	p.batch = nil
	p.mu.Unlock()

	if len(batch) > 0 {
		return batch, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// gate is a provider whose Search blocks until released, standing in for a
// slow upstream query.
type gate struct {
	release chan struct{}
}

func (g *gate) Search(ctx context.Context, query string) ([]metadata.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
		return nil, nil
	}
}

func (g *gate) CheckReleased(ctx context.Context, id, title string, year int) (bool, error) {
	return false, nil
}

func newPollerFixture(t *testing.T, api *pollingAPI, provider metadata.Provider) *Poller {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sessions := session.NewStore()
	providers := metadata.Providers{"en": provider}
	resolver := search.NewResolver(providers, sessions, logging.NewNop())
	manager := watchlist.NewManager(st, providers, sessions, logging.NewNop())
	handler := NewHandler(api, st, sessions, resolver, manager, providers, "en", logging.NewNop())
	return NewPoller(api, handler, 1, logging.NewNop())
}

func waitFor(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPollerAdvancesOffset(t *testing.T) {
	api := &pollingAPI{batch: []Update{
		messageUpdate(1, 10, "/start"),
		messageUpdate(1, 10, "/movies"),
	}}
	api.batch[0].UpdateID = 100
	api.batch[1].UpdateID = 101

	poller := newPollerFixture(t, api, &fakeProvider{})

	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, "replies to both updates", func() bool {
		api.fakeAPI.mu.Lock()
		defer api.fakeAPI.mu.Unlock()
		return len(api.fakeAPI.sent) == 2
	})
	waitFor(t, "second poll", func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.offsets) >= 2
	})

	poller.Stop()
	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop failed: %v", err)
	}
	poller.Stop()

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.offsets[0] != 0 {
		t.Fatalf("first poll must start at offset 0, got %d", api.offsets[0])
	}
	if api.offsets[1] != 102 {
		t.Fatalf("second poll must resume past the batch, got %d", api.offsets[1])
	}
}

func TestSlowUserDoesNotBlockOtherUsers(t *testing.T) {
	slow := &gate{release: make(chan struct{})}
	api := &pollingAPI{batch: []Update{
		messageUpdate(1, 10, "dune"),
		messageUpdate(2, 20, "/movies"),
	}}
	api.batch[0].UpdateID = 100
	api.batch[1].UpdateID = 101

	poller := newPollerFixture(t, api, slow)

	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// User 2 must get a reply while user 1's search is still stuck in the
	// provider.
	waitFor(t, "user 2's reply", func() bool {
		api.fakeAPI.mu.Lock()
		defer api.fakeAPI.mu.Unlock()
		for _, msg := range api.fakeAPI.sent {
			if msg.chatID == 20 {
				return true
			}
		}
		return false
	})

	api.fakeAPI.mu.Lock()
	for _, msg := range api.fakeAPI.sent {
		if msg.chatID == 10 {
			t.Fatal("user 1's search must still be in flight")
		}
	}
	api.fakeAPI.mu.Unlock()

	close(slow.release)
	waitFor(t, "user 1's reply", func() bool {
		api.fakeAPI.mu.Lock()
		defer api.fakeAPI.mu.Unlock()
		for _, msg := range api.fakeAPI.sent {
			if msg.chatID == 10 {
				return true
			}
		}
		return false
	})

	poller.Stop()
}

func TestSameUserUpdatesStayOrdered(t *testing.T) {
	api := &pollingAPI{batch: []Update{
		messageUpdate(1, 10, "/start"),
		messageUpdate(1, 10, "/movies"),
		messageUpdate(1, 10, "/cancel"),
	}}
	for i := range api.batch {
		api.batch[i].UpdateID = int64(100 + i)
	}

	poller := newPollerFixture(t, api, &fakeProvider{})

	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "all replies", func() bool {
		api.fakeAPI.mu.Lock()
		defer api.fakeAPI.mu.Unlock()
		return len(api.fakeAPI.sent) == 3
	})
	poller.Stop()

	api.fakeAPI.mu.Lock()
	defer api.fakeAPI.mu.Unlock()
	if api.fakeAPI.sent[0].text != msgWelcome {
		t.Fatalf("first reply must answer /start, got %q", api.fakeAPI.sent[0].text)
	}
	if api.fakeAPI.sent[1].text != msgEmptyWatchlist {
		t.Fatalf("second reply must answer /movies, got %q", api.fakeAPI.sent[1].text)
	}
	if api.fakeAPI.sent[2].text != msgWhatNext {
		t.Fatalf("third reply must answer /cancel, got %q", api.fakeAPI.sent[2].text)
	}
}
