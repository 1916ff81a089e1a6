package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EnsureUser returns the user record for id, creating it with the supplied
// language on first contact.
func (s *Store) EnsureUser(ctx context.Context, id int64, lang string) (*User, error) {
	now := nowStamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, language, created_at, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		id, lang, now, now,
	); err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", id, err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a user record.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, language, created_at, updated_at FROM users WHERE id = ?`, id)

	var user User
	var createdAt, updatedAt string
	if err := row.Scan(&user.ID, &user.Language, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	user.CreatedAt = parseStamp(createdAt)
	user.UpdatedAt = parseStamp(updatedAt)
	return &user, nil
}

// SetUserLanguage updates a user's preferred language.
func (s *Store) SetUserLanguage(ctx context.Context, id int64, lang string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET language = ?, updated_at = ? WHERE id = ?`,
		lang, nowStamp(), id)
	if err != nil {
		return fmt.Errorf("set language for user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set language for user %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Observe adds a movie reference to the user's watched set. Set semantics:
// observing the same movie twice is a no-op.
func (s *Store) Observe(ctx context.Context, userID int64, movieID string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_movies (user_id, movie_id, added_at) VALUES (?, ?, ?)`,
		userID, movieID, nowStamp(),
	); err != nil {
		return fmt.Errorf("observe movie %s for user %d: %w", movieID, userID, err)
	}
	return nil
}

// IsObserving reports whether the user already watches the given movie.
func (s *Store) IsObserving(ctx context.Context, userID int64, movieID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM user_movies WHERE user_id = ? AND movie_id = ?`,
		userID, movieID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check observation for user %d: %w", userID, err)
	}
	return count > 0, nil
}

// ListObserved returns the movies a user watches, ordered by title.
func (s *Store) ListObserved(ctx context.Context, userID int64) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.title, m.year, m.released, m.created_at, m.updated_at
         FROM movies m
         JOIN user_movies um ON um.movie_id = m.id
         WHERE um.user_id = ?
         ORDER BY m.title`, userID)
	if err != nil {
		return nil, fmt.Errorf("list observed movies for user %d: %w", userID, err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		var movie Movie
		var released int
		var createdAt, updatedAt string
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.Year, &released, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan observed movie: %w", err)
		}
		movie.Released = released != 0
		movie.CreatedAt = parseStamp(createdAt)
		movie.UpdatedAt = parseStamp(updatedAt)
		movies = append(movies, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observed movies: %w", err)
	}
	return movies, nil
}

// WatchersByLanguage returns the users observing a movie whose preferred
// language matches lang. The sweep uses this to fan out notifications.
func (s *Store) WatchersByLanguage(ctx context.Context, movieID, lang string) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.language, u.created_at, u.updated_at
         FROM users u
         JOIN user_movies um ON um.user_id = u.id
         WHERE um.movie_id = ? AND u.language = ?
         ORDER BY u.id`, movieID, lang)
	if err != nil {
		return nil, fmt.Errorf("list watchers for movie %s: %w", movieID, err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var createdAt, updatedAt string
		if err := rows.Scan(&user.ID, &user.Language, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan watcher: %w", err)
		}
		user.CreatedAt = parseStamp(createdAt)
		user.UpdatedAt = parseStamp(updatedAt)
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchers: %w", err)
	}
	return users, nil
}
