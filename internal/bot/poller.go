package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"filmwatch/internal/logging"
)

// Poller pulls updates off the chat transport and feeds them to the handler.
// Updates for different users are handled concurrently so one user's slow
// provider query never stalls another user's conversation; updates from the
// same user keep their arrival order on one dedicated queue.
type Poller struct {
	api         API
	handler     *Handler
	pollTimeout int
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller over the given transport.
func NewPoller(api API, handler *Handler, pollTimeout int, logger *slog.Logger) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Poller{
		api:         api,
		handler:     handler,
		pollTimeout: pollTimeout,
		logger:      logging.NewComponentLogger(logger, "poller"),
	}
}

// Start launches the long-poll loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("poller already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(runCtx)
	return nil
}

// Stop terminates the loop and waits for in-flight handling to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	queues := make(map[int64]chan Update)
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.api.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Warn("poll failed; backing off", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, queues, update)
		}
	}
}

// dispatch routes one update onto its user's queue, starting that queue's
// drainer on first contact. The queues map is owned by the poll loop
// goroutine; each drainer only reads from its own channel.
func (p *Poller) dispatch(ctx context.Context, queues map[int64]chan Update, update Update) {
	key := updateUserID(update)
	queue, ok := queues[key]
	if !ok {
		queue = make(chan Update, 16)
		queues[key] = queue
		p.wg.Add(1)
		go p.drain(ctx, queue)
	}
	select {
	case <-ctx.Done():
	case queue <- update:
	}
}

func (p *Poller) drain(ctx context.Context, queue chan Update) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-queue:
			p.handler.Handle(ctx, update)
		}
	}
}

func updateUserID(update Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}
