// Package testutil provides shared fakes and assertions for package tests.
//
// Typical usage:
//
//	func TestMyAnalysis(t *testing.T) {
//	    dict := testutil.NewStubDictionary(map[string][]string{
//	        "HELLO": {"HH AH0 L OW1"},
//	    })
//	    logs := &testutil.CapturingHandler{}
//	    a := analysis.New(dict, analysis.WithLogger(slog.New(logs)))
//	    ...
//	}
package testutil

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
)

// ErrStubLookup is returned by StubDictionary for words registered with Fail.
var ErrStubLookup = errors.New("stub dictionary failure")

// StubDictionary is an in-memory pronounce.Dictionary.
type StubDictionary struct {
	mu      sync.Mutex
	entries map[string][][]string
	failing map[string]bool
	calls   []string
}

// NewStubDictionary builds a dictionary from upper-case words to
// space-separated pronunciations, first alternative first.
func NewStubDictionary(entries map[string][]string) *StubDictionary {
	d := &StubDictionary{
		entries: make(map[string][][]string, len(entries)),
		failing: make(map[string]bool),
	}
	for w, prons := range entries {
		for _, p := range prons {
			d.entries[w] = append(d.entries[w], strings.Fields(p))
		}
	}
	return d
}

// Fail makes lookups of word return ErrStubLookup.
func (d *StubDictionary) Fail(word string) *StubDictionary {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing[word] = true
	return d
}

// Lookup records the call and returns copies of the registered
// pronunciations.
func (d *StubDictionary) Lookup(word string) ([][]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, word)
	if d.failing[word] {
		return nil, ErrStubLookup
	}
	prons := d.entries[word]
	if prons == nil {
		return nil, nil
	}
	out := make([][]string, len(prons))
	for i, p := range prons {
		out[i] = append([]string(nil), p...)
	}
	return out, nil
}

// Calls returns the words looked up so far, in order.
func (d *StubDictionary) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// RequireDictionaryFile skips the test unless VISEMES_DICTIONARY_PATH names
// an existing CMUdict file, and returns that path.
func RequireDictionaryFile(tb testing.TB) string {
	tb.Helper()

	path := os.Getenv("VISEMES_DICTIONARY_PATH")
	if path == "" {
		tb.Skipf("full dictionary not configured; set VISEMES_DICTIONARY_PATH to a cmudict file")
	}
	if _, err := os.Stat(path); err != nil {
		tb.Skipf("dictionary not found at VISEMES_DICTIONARY_PATH=%q", path)
	}
	return path
}
