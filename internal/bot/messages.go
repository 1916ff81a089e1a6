package bot

import (
	"fmt"
	"strings"

	"filmwatch/internal/language"
	"filmwatch/internal/store"
)

const (
	msgWelcome = "Hi! Send me a movie title and I will let you know once it is released.\n" +
		"Commands: /movies — your watch-list, /language &lt;code&gt; — change language, /cancel — back to start."
	msgWhatNext        = "What would you like to do next? Send me a movie title to search."
	msgNoResults       = "I could not find anything for that title. Try another search."
	msgPickCandidate   = "Here is what I found. Pick one:"
	msgGenericError    = "Something went wrong, please try again."
	msgAlreadyReleased = "This movie has already been released, so there is nothing to wait for."
	msgAlreadyWatching = "This movie is already on your watch-list."
	msgEmptyWatchlist  = "Your watch-list is empty. Send me a movie title to start."
)

func msgAdded(movie *store.Movie) string {
	return fmt.Sprintf("✅ <b>%s</b> (%d) added to your watch-list. I will ping you on release day.",
		movie.Title, movie.Year)
}

func msgLanguageSet(lang string) string {
	return fmt.Sprintf("Language switched to %s.", language.DisplayName(lang))
}

func msgUnsupportedLanguage(supported []string) string {
	names := make([]string, 0, len(supported))
	for _, lang := range supported {
		names = append(names, language.DisplayName(lang))
	}
	return fmt.Sprintf("I cannot track releases in that language. Supported: %s.", strings.Join(names, ", "))
}

func msgMovieFocus(title string, year int) string {
	return fmt.Sprintf("<b>%s</b> (%d)\nAdd it to your watch-list?", title, year)
}

func msgWatchlistLine(movie *store.Movie) string {
	state := "⏳ waiting"
	if movie.Released {
		state = "🎬 released"
	}
	return fmt.Sprintf("• %s (%d) — %s", movie.Title, movie.Year, state)
}
