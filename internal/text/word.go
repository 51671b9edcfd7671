// Package text turns raw input into tokens and dictionary lookup keys.
package text

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// CleanInput converts CRLF and bare CR line endings to LF and trims
// surrounding whitespace. Empty results are rejected with ErrEmptyText.
func CleanInput(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}
	return s, nil
}

// NormalizeWord produces the dictionary key for a word token: accents are
// folded onto their base letter, the word is upper-cased, and everything but
// A-Z and the apostrophe is removed. Typographic apostrophes become '.
//
// Transformers and casers hold state, so they are built per call.
func NormalizeWord(word string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, word)
	if err != nil {
		folded = word
	}
	upper := cases.Upper(language.Und).String(folded)

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case IsApostrophe(r):
			b.WriteByte('\'')
		}
	}
	return b.String()
}
