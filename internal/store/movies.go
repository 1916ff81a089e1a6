package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertWatch records interest in a movie for the given language. When the
// movie is unknown it is created unreleased; when it already exists only the
// language set is extended and the released flag is left untouched. The call
// is idempotent.
func (s *Store) UpsertWatch(ctx context.Context, id, title string, year int, lang string) (*Movie, error) {
	now := nowStamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin watch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO movies (id, title, year, released, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)
         ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		id, title, year, now, now,
	); err != nil {
		return nil, fmt.Errorf("upsert movie %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO movie_languages (movie_id, language) VALUES (?, ?)`,
		id, lang,
	); err != nil {
		return nil, fmt.Errorf("add language %s to movie %s: %w", lang, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit watch tx: %w", err)
	}

	return s.GetMovie(ctx, id)
}

// GetMovie fetches a movie with its unreleased language set.
func (s *Store) GetMovie(ctx context.Context, id string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, year, released, created_at, updated_at FROM movies WHERE id = ?`, id)

	var movie Movie
	var released int
	var createdAt, updatedAt string
	if err := row.Scan(&movie.ID, &movie.Title, &movie.Year, &released, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get movie %s: %w", id, err)
	}
	movie.Released = released != 0
	movie.CreatedAt = parseStamp(createdAt)
	movie.UpdatedAt = parseStamp(updatedAt)

	langs, err := s.movieLanguages(ctx, id)
	if err != nil {
		return nil, err
	}
	movie.UnreleasedLanguages = langs
	return &movie, nil
}

// ListUnreleased returns all movies whose released flag is still false,
// language sets included, ordered by id for stable iteration.
func (s *Store) ListUnreleased(ctx context.Context) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, year, created_at, updated_at FROM movies WHERE released = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list unreleased movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		var movie Movie
		var createdAt, updatedAt string
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.Year, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan unreleased movie: %w", err)
		}
		movie.CreatedAt = parseStamp(createdAt)
		movie.UpdatedAt = parseStamp(updatedAt)
		movies = append(movies, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unreleased movies: %w", err)
	}

	for _, movie := range movies {
		langs, err := s.movieLanguages(ctx, movie.ID)
		if err != nil {
			return nil, err
		}
		movie.UnreleasedLanguages = langs
	}
	return movies, nil
}

// ListMovies returns every movie in the registry ordered by title.
func (s *Store) ListMovies(ctx context.Context) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, year, released, created_at, updated_at FROM movies ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		var movie Movie
		var released int
		var createdAt, updatedAt string
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.Year, &released, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movie.Released = released != 0
		movie.CreatedAt = parseStamp(createdAt)
		movie.UpdatedAt = parseStamp(updatedAt)
		movies = append(movies, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// MarkReleased flips the released flag. The update is a compare-and-swap on
// released=0 so concurrent sweeps and watch commits cannot race the flag;
// the return value reports whether this call performed the transition.
func (s *Store) MarkReleased(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE movies SET released = 1, updated_at = ? WHERE id = ? AND released = 0`,
		nowStamp(), id)
	if err != nil {
		return false, fmt.Errorf("mark movie %s released: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark movie %s released: %w", id, err)
	}
	return affected > 0, nil
}

// ClearLanguage removes a language from a movie's unreleased set once the
// notification for that language has been dispatched.
func (s *Store) ClearLanguage(ctx context.Context, id, lang string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM movie_languages WHERE movie_id = ? AND language = ?`, id, lang); err != nil {
		return fmt.Errorf("clear language %s for movie %s: %w", lang, id, err)
	}
	return nil
}

func (s *Store) movieLanguages(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT language FROM movie_languages WHERE movie_id = ? ORDER BY language`, id)
	if err != nil {
		return nil, fmt.Errorf("load languages for movie %s: %w", id, err)
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language for movie %s: %w", id, err)
		}
		langs = append(langs, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages for movie %s: %w", id, err)
	}
	return langs, nil
}
