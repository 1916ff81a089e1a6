package metadata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Cyrillic titles come back from providers with ё and е used
// interchangeably; substituted at write time so repeated searches match the
// stored title.
var titleReplacer = strings.NewReplacer(
	"ё", "е",
	"Ё", "Е",
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle applies the write-time character substitutions that keep
// stored titles stable for downstream matching. Latin titles have their
// diacritics folded to base letters; Cyrillic titles only get the ё
// substitution, since decomposition would mangle letters like й.
func NormalizeTitle(title string) string {
	title = titleReplacer.Replace(strings.TrimSpace(title))
	if !containsCyrillic(title) {
		if folded, _, err := transform.String(foldDiacritics, title); err == nil {
			title = folded
		}
	}
	return strings.Join(strings.Fields(title), " ")
}

func containsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
