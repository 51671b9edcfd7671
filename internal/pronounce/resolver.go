// Package pronounce resolves words to ARPAbet phonetic codes through a
// pronunciation dictionary, falling back to spelling the word out letter by
// letter when the dictionary cannot help.
package pronounce

import (
	"log/slog"
	"strings"

	"github.com/example/go-visemes/internal/text"
)

// Dictionary returns every known pronunciation of an upper-case word. Each
// pronunciation is a sequence of ARPAbet codes that may carry a trailing
// stress digit. An unknown word yields no pronunciations and a nil error.
type Dictionary interface {
	Lookup(word string) ([][]string, error)
}

// Fallback tags how a word's phonetic units were obtained.
type Fallback string

const (
	// FallbackNone means the dictionary supplied the pronunciation.
	FallbackNone Fallback = ""
	// FallbackUnresolved means the dictionary had no entry for the word.
	FallbackUnresolved Fallback = "unresolved"
	// FallbackLookupFailed means the dictionary returned an error.
	FallbackLookupFailed Fallback = "lookup_failed"
)

// Resolution is the outcome of resolving one word.
type Resolution struct {
	// Word is the normalized dictionary key.
	Word string
	// Phonemes holds stress-free ARPAbet codes, or single letters when
	// Fallback is set.
	Phonemes []string
	Fallback Fallback
	// Err is the dictionary error behind FallbackLookupFailed.
	Err error
}

// FellBack reports whether the phonemes came from the letter fallback.
func (r Resolution) FellBack() bool { return r.Fallback != FallbackNone }

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// Resolver maps words to phonetic codes.
type Resolver struct {
	dict Dictionary
	log  *slog.Logger
}

// NewResolver returns a Resolver backed by dict.
func NewResolver(dict Dictionary, opts ...Option) *Resolver {
	r := &Resolver{dict: dict, log: slog.Default()}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Resolve normalizes word and returns its phonetic codes. It never fails:
// unknown words and dictionary errors degrade to one unit per letter
// (a crude spelling fallback with no phonetic basis).
func (r *Resolver) Resolve(word string) Resolution {
	key := text.NormalizeWord(word)
	if key == "" {
		return Resolution{Phonemes: []string{}}
	}

	prons, err := r.dict.Lookup(key)
	if err != nil {
		r.log.Error("pronunciation lookup failed",
			slog.String("word", key),
			slog.String("error", err.Error()),
		)
		return Resolution{
			Word:     key,
			Phonemes: SpellOut(key),
			Fallback: FallbackLookupFailed,
			Err:      err,
		}
	}

	if len(prons) == 0 || len(prons[0]) == 0 {
		r.log.Warn("no pronunciation found", slog.String("word", key))
		return Resolution{
			Word:     key,
			Phonemes: SpellOut(key),
			Fallback: FallbackUnresolved,
		}
	}

	phones := make([]string, len(prons[0]))
	for i, p := range prons[0] {
		phones[i] = StripStress(p)
	}

	r.log.Debug("raw phonemes",
		slog.String("word", key),
		slog.Any("phonemes", phones),
	)

	return Resolution{Word: key, Phonemes: phones}
}

// StripStress removes trailing stress digits from an ARPAbet code.
func StripStress(code string) string {
	return strings.TrimRight(code, "0123456789")
}

// SpellOut splits a normalized word into one unit per character.
func SpellOut(word string) []string {
	units := make([]string, 0, len(word))
	for _, r := range word {
		units = append(units, string(r))
	}
	return units
}
