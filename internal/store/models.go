package store

import "time"

// Movie is a shared registry record keyed by its external identifier.
// Released is monotonic: it flips from false to true exactly once and never
// reverts. UnreleasedLanguages holds the locales in which at least one
// watcher is still owed a release notification.
type Movie struct {
	ID                  string
	Title               string
	Year                int
	Released            bool
	UnreleasedLanguages []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasLanguage reports whether the movie still owes a notification in the
// given language.
func (m *Movie) HasLanguage(lang string) bool {
	for _, l := range m.UnreleasedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// User is a chat user with a preferred language. The watched movie set lives
// in the user_movies relation and is loaded on demand.
type User struct {
	ID        int64
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
