package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/notifications"
	"filmwatch/internal/store"
)

// Summary reports what a single sweep did.
type Summary struct {
	Checked  int
	Released int
	Notified int
}

// Sweeper runs the recurring release check as an independent background
// task. It talks to storage through the same upsert contract as the
// conversational handlers and holds no locks of its own.
type Sweeper struct {
	store        *store.Store
	providers    metadata.Providers
	dispatcher   notifications.Service
	interval     time.Duration
	queryTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a sweeper. Interval governs the recurring schedule;
// queryTimeout bounds each individual oracle query.
func New(st *store.Store, providers metadata.Providers, dispatcher notifications.Service, interval, queryTimeout time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Sweeper{
		store:        st,
		providers:    providers,
		dispatcher:   dispatcher,
		interval:     interval,
		queryTimeout: queryTimeout,
		logger:       logging.NewComponentLogger(logger, "sweeper"),
	}
}

// Start launches the background loop: one eager sweep immediately, then one
// per interval until the context is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("sweeper already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(runCtx)
	return nil
}

// Stop terminates the background loop and waits for it to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	s.runLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Sweeper) runLogged(ctx context.Context) {
	summary, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("release sweep failed", logging.Error(err))
		return
	}
	s.logger.Info("release sweep finished",
		logging.Int("checked", summary.Checked),
		logging.Int("released", summary.Released),
		logging.Int("notified", summary.Notified),
	)
}

// RunOnce executes a single sweep over all unreleased tracked movies. Movies
// are independent: a failure on one is logged and the sweep continues with
// the next. A failed or timed-out oracle query counts as unknown for this
// cycle and is retried on the next schedule, never as released.
func (s *Sweeper) RunOnce(ctx context.Context) (Summary, error) {
	sweepID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldSweepID, sweepID))

	movies, err := s.store.ListUnreleased(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Checked: len(movies)}
	for _, movie := range movies {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		notified, released, err := s.sweepMovie(ctx, logger, movie)
		summary.Notified += notified
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return summary, err
			}
			logger.Error("sweep failed for movie; continuing with next",
				logging.String(logging.FieldMovieID, movie.ID),
				logging.Error(err),
			)
			continue
		}
		if released {
			summary.Released++
		}
	}
	return summary, nil
}

// sweepMovie re-checks one movie. Notifications are dispatched before the
// released flag is persisted, so a crash mid-movie re-attempts the release on
// the next sweep instead of silently dropping it.
func (s *Sweeper) sweepMovie(ctx context.Context, logger *slog.Logger, movie *store.Movie) (notified int, released bool, err error) {
	confirmed := make([]string, 0, len(movie.UnreleasedLanguages))
	for _, lang := range movie.UnreleasedLanguages {
		provider, ok := s.providers.ForLanguage(lang)
		if !ok {
			logger.Warn("no release oracle for language; skipping this cycle",
				logging.String(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldLanguage, lang),
			)
			continue
		}

		queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		out, queryErr := provider.CheckReleased(queryCtx, movie.ID, movie.Title, movie.Year)
		cancel()
		if queryErr != nil {
			if errors.Is(queryErr, context.Canceled) {
				return notified, false, queryErr
			}
			logger.Warn("release check failed; treating as unknown this cycle",
				logging.String(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldLanguage, lang),
				logging.Error(queryErr),
			)
			continue
		}
		if out {
			confirmed = append(confirmed, lang)
		}
	}

	if len(confirmed) == 0 {
		return notified, false, nil
	}

	var watchersErr error
	for _, lang := range confirmed {
		watchers, watchErr := s.store.WatchersByLanguage(ctx, movie.ID, lang)
		if watchErr != nil {
			logger.Error("loading watchers failed; language retried next sweep",
				logging.String(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldLanguage, lang),
				logging.Error(watchErr),
			)
			watchersErr = watchErr
			continue
		}

		for _, watcher := range watchers {
			if dispatchErr := s.dispatcher.NotifyReleased(ctx, watcher.ID, movie.Title, movie.Year, lang); dispatchErr != nil {
				logger.Warn("notification delivery failed for one user",
					logging.Int64(logging.FieldUserID, watcher.ID),
					logging.String(logging.FieldMovieID, movie.ID),
					logging.Error(dispatchErr),
				)
				continue
			}
			notified++
		}

		if clearErr := s.store.ClearLanguage(ctx, movie.ID, lang); clearErr != nil {
			logger.Error("pruning notified language failed",
				logging.String(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldLanguage, lang),
				logging.Error(clearErr),
			)
		}
	}

	// A language whose watchers could not be loaded has had no dispatch
	// attempt. Leave the released flag unset so the movie stays in the
	// sweep set and the language is actually retried.
	if watchersErr != nil {
		return notified, false, fmt.Errorf("load watchers for movie %s: %w", movie.ID, watchersErr)
	}

	flipped, err := s.store.MarkReleased(ctx, movie.ID)
	if err != nil {
		return notified, false, err
	}
	if flipped {
		logger.Info("movie released",
			logging.String(logging.FieldMovieID, movie.ID),
			logging.String("title", movie.Title),
		)
	}
	return notified, flipped, nil
}
