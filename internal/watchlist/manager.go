// Package watchlist validates and commits watch-list additions: the add-flow
// between a selected search candidate and the persistent registries.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"

	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/session"
	"filmwatch/internal/store"
)

// Reason is a typed rejection produced by CanAdd. Rejections are normal
// conversation outcomes, not faults.
type Reason string

const (
	// ReasonAlreadyReleased rejects movies that are already out; there is
	// nothing left to notify about.
	ReasonAlreadyReleased Reason = "already_released"
	// ReasonAlreadyObserving rejects duplicates of the user's watch-list.
	ReasonAlreadyObserving Reason = "already_observing"
)

// Decision is the outcome of the add-flow validation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Manager runs the add-flow checks and commits.
type Manager struct {
	store     *store.Store
	providers metadata.Providers
	sessions  *session.Store
	logger    *slog.Logger
}

// NewManager creates a watch-list manager.
func NewManager(st *store.Store, providers metadata.Providers, sessions *session.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:     st,
		providers: providers,
		sessions:  sessions,
		logger:    logging.NewComponentLogger(logger, "watchlist"),
	}
}

// CanAdd checks whether the candidate may join the user's watch-list. Checks
// run in priority order and short-circuit: release status first, duplicate
// second. An unreachable release oracle is an operation error, not a
// rejection.
func (m *Manager) CanAdd(ctx context.Context, user *store.User, candidate metadata.Result) (Decision, error) {
	m.logger.Debug("checking if movie can be added",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String(logging.FieldMovieID, candidate.ID),
	)

	provider, ok := m.providers.ForLanguage(user.Language)
	if !ok {
		return Decision{}, fmt.Errorf("no release oracle configured for language %s", user.Language)
	}

	released, err := provider.CheckReleased(ctx, candidate.ID, candidate.Title, candidate.Year())
	if err != nil {
		return Decision{}, fmt.Errorf("check release status of %s: %w", candidate.ID, err)
	}
	if released {
		return Decision{Reason: ReasonAlreadyReleased}, nil
	}

	observing, err := m.store.IsObserving(ctx, user.ID, candidate.ID)
	if err != nil {
		return Decision{}, err
	}
	if observing {
		return Decision{Reason: ReasonAlreadyObserving}, nil
	}

	return Decision{Allowed: true}, nil
}

// Commit upserts the movie into the registry, links it to the user, and
// clears the session candidates. The upsert is idempotent: an existing movie
// only gains the user's language in its unreleased set. A storage failure
// between the two writes surfaces to the caller; the movie upsert is not
// rolled back, a later retry converges on the same state.
func (m *Manager) Commit(ctx context.Context, user *store.User, candidate metadata.Result) (*store.Movie, error) {
	title := metadata.NormalizeTitle(candidate.Title)

	movie, err := m.store.UpsertWatch(ctx, candidate.ID, title, candidate.Year(), user.Language)
	if err != nil {
		return nil, err
	}

	if err := m.store.Observe(ctx, user.ID, movie.ID); err != nil {
		return nil, err
	}

	m.sessions.ClearCandidates(user.ID)

	m.logger.Info("movie added to watch-list",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String(logging.FieldMovieID, movie.ID),
		logging.String(logging.FieldLanguage, user.Language),
	)
	return movie, nil
}
