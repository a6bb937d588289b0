package listen

import (
	"strings"
	"unicode"
)

// Tokenize splits free text on whitespace into lower-cased words with every
// character other than letters, digits and underscore removed. Tokens left
// empty are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return unicode.ToLower(r)
			}
			return -1
		}, f)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
