// Package cmudict loads pronunciation dictionaries in the CMU Pronouncing
// Dictionary text format.
//
// Both layouts in circulation are accepted:
//
//	;;; comment
//	HELLO  HH AH0 L OW1
//	HELLO(1)  HH EH0 L OW1
//
//	hello HH AH0 L OW1
//	hello(2) HH EH0 L OW1 # trailing comment
//
// Trailing comments must be separated from the phones by whitespace, so
// punctuation entries such as "#HASH-MARK" survive.
//
// Keys are upper-cased; alternatives are kept in variant order with the
// unnumbered entry first.
package cmudict

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by Parse for lines it cannot understand.
var ErrMalformed = errors.New("malformed dictionary line")

// Dict is an immutable in-memory pronunciation dictionary. It is safe for
// concurrent use.
type Dict struct {
	entries map[string][][]string
	nprons  int
}

type variant struct {
	n      int
	phones []string
}

// Parse reads a dictionary from r.
func Parse(r io.Reader) (*Dict, error) {
	staged := make(map[string][]variant)
	nprons := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.HasPrefix(line, ";;;") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: no phones for %q", lineNo, ErrMalformed, fields[0])
		}

		word, n, err := splitVariant(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		staged[word] = append(staged[word], variant{n: n, phones: fields[1:]})
		nprons++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	d := &Dict{
		entries: make(map[string][][]string, len(staged)),
		nprons:  nprons,
	}
	for word, vs := range staged {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].n < vs[j].n })
		prons := make([][]string, len(vs))
		for i, v := range vs {
			prons[i] = v.phones
		}
		d.entries[word] = prons
	}

	return d, nil
}

// Load reads a dictionary file from disk.
func Load(path string) (*Dict, error) {
	if path == "" {
		return nil, errors.New("dictionary path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return d, nil
}

// splitVariant separates "WORD(2)" into "WORD" and 2. Unnumbered keys are
// variant 0.
func splitVariant(key string) (string, int, error) {
	word := strings.ToUpper(key)
	open := strings.LastIndexByte(word, '(')
	if open <= 0 || !strings.HasSuffix(word, ")") {
		return word, 0, nil
	}
	n, err := strconv.Atoi(word[open+1 : len(word)-1])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("%w: bad variant in %q", ErrMalformed, key)
	}
	return word[:open], n, nil
}

// Lookup returns copies of every pronunciation of word, first alternative
// first. The word is matched case-insensitively. Unknown words return nil.
func (d *Dict) Lookup(word string) ([][]string, error) {
	prons := d.entries[strings.ToUpper(word)]
	if len(prons) == 0 {
		return nil, nil
	}
	out := make([][]string, len(prons))
	for i, p := range prons {
		out[i] = append([]string(nil), p...)
	}
	return out, nil
}

// Len returns the number of distinct words.
func (d *Dict) Len() int { return len(d.entries) }

// Pronunciations returns the number of pronunciations across all words.
func (d *Dict) Pronunciations() int { return d.nprons }

// Phones returns every distinct phonetic code in the dictionary, sorted.
func (d *Dict) Phones() []string {
	seen := make(map[string]struct{})
	for _, prons := range d.entries {
		for _, p := range prons {
			for _, ph := range p {
				seen[ph] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for ph := range seen {
		out = append(out, ph)
	}
	sort.Strings(out)
	return out
}
