// Package search resolves free-text queries into movie candidate lists,
// keeping the list stable inside a conversation until it is explicitly
// cleared.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/session"
)

// Resolver turns user input plus session state into candidate movies.
type Resolver struct {
	providers metadata.Providers
	sessions  *session.Store
	logger    *slog.Logger
}

// NewResolver creates a resolver over the per-language provider map.
func NewResolver(providers metadata.Providers, sessions *session.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		providers: providers,
		sessions:  sessions,
		logger:    logging.NewComponentLogger(logger, "search"),
	}
}

// Resolve returns the conversation's candidate list. A list cached by an
// earlier search in the same conversation is returned unchanged; otherwise
// the per-language provider is queried and the result cached. Provider
// failures are logged and surface as an empty list: the conversation treats
// that as a dead end and prompts for another search rather than retrying.
func (r *Resolver) Resolve(ctx context.Context, userID int64, lang, freeText string) ([]metadata.Result, error) {
	if cached := r.sessions.Candidates(userID); len(cached) > 0 {
		return cached, nil
	}

	provider, ok := r.providers.ForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("no search provider configured for language %s", lang)
	}

	r.logger.Debug("searching for movie",
		logging.Int64(logging.FieldUserID, userID),
		logging.String(logging.FieldLanguage, lang),
		logging.String("query", freeText),
	)

	results, err := provider.Search(ctx, freeText)
	if err != nil {
		r.logger.Error("movie search failed",
			logging.Int64(logging.FieldUserID, userID),
			logging.String(logging.FieldLanguage, lang),
			logging.Error(err),
		)
		return nil, nil
	}

	r.sessions.SetCandidates(userID, results)
	return results, nil
}

// Select focuses the candidate rendered at index k of the cached list.
// A stale or out-of-range reference yields session.ErrStaleSelection.
func (r *Resolver) Select(userID int64, k int) (metadata.Result, error) {
	return r.sessions.Select(userID, k)
}

// SelectByID focuses the cached candidate carrying the given movie id.
func (r *Resolver) SelectByID(userID int64, movieID string) (metadata.Result, error) {
	return r.sessions.SelectByID(userID, movieID)
}
