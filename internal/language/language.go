// Package language provides language code normalization and display names for
// the locales the bot can track releases in.
package language

import "strings"

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	display string
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "English", []string{"english"}},
	{"ru", "rus", "Russian", []string{"russian"}},
	{"es", "spa", "Spanish", []string{"spanish"}},
	{"fr", "fra", "French", []string{"french"}},
	{"de", "deu", "German", []string{"german"}},
	{"it", "ita", "Italian", []string{"italian"}},
	{"pt", "por", "Portuguese", []string{"portuguese"}},
	{"pl", "pol", "Polish", []string{"polish"}},
	{"uk", "ukr", "Ukrainian", []string{"ukrainian"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize converts any recognized language code, locale, or word form to the
// canonical ISO 639-1 code used throughout storage and sessions. Locale
// strings such as "en-US" reduce to their language part. Returns the empty
// string for unrecognized input.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
// Unrecognized input comes back uppercased so it still renders in menus.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
