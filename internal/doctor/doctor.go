// Package doctor provides preflight checks for the visemes pipeline.
package doctor

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/example/go-visemes/internal/cmudict"
	"github.com/example/go-visemes/internal/pronounce"
	"github.com/example/go-visemes/internal/viseme"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// tableSize is the number of ARPAbet phones the standardization table covers.
const tableSize = 39

// DefaultProbeWords are looked up when Config.ProbeWords is nil.
var DefaultProbeWords = []string{"hello", "world"}

// LoadFunc loads a dictionary and returns it with a description of its source.
type LoadFunc func() (dict *cmudict.Dict, source string, err error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// DictionaryPath, when set, must exist on disk.
	DictionaryPath string
	// LoadDictionary loads the dictionary the pipeline would use.
	LoadDictionary LoadFunc
	// ProbeWords must each have at least one pronunciation.
	ProbeWords []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- viseme table ------------------------------------------------------
	if err := checkTable(); err != nil {
		res.fail(fmt.Sprintf("viseme table: %v", err))
		fmt.Fprintf(w, "%s viseme table: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s viseme table: %d phones, %d visemes\n",
			PassMark, len(viseme.Table()), len(viseme.Alphabet()))
	}

	// ---- dictionary file ---------------------------------------------------
	if cfg.DictionaryPath != "" {
		if _, err := os.Stat(cfg.DictionaryPath); err != nil {
			res.fail(fmt.Sprintf("dictionary file %q: %v", cfg.DictionaryPath, err))
			fmt.Fprintf(w, "%s dictionary file %s: not found\n", FailMark, cfg.DictionaryPath)
		} else {
			fmt.Fprintf(w, "%s dictionary file: %s\n", PassMark, cfg.DictionaryPath)
		}
	}

	// ---- dictionary contents -----------------------------------------------
	if cfg.LoadDictionary == nil {
		res.fail("dictionary: no loader configured")
		fmt.Fprintf(w, "%s dictionary: no loader configured\n", FailMark)
		return res
	}

	dict, source, err := cfg.LoadDictionary()
	if err != nil {
		res.fail(fmt.Sprintf("dictionary: %v", err))
		fmt.Fprintf(w, "%s dictionary: %v\n", FailMark, err)
		return res
	}
	if dict.Len() == 0 {
		res.fail(fmt.Sprintf("dictionary %s: no entries", source))
		fmt.Fprintf(w, "%s dictionary %s: no entries\n", FailMark, source)
		return res
	}
	fmt.Fprintf(w, "%s dictionary: %s (%d words, %d pronunciations)\n",
		PassMark, source, dict.Len(), dict.Pronunciations())

	// ---- phone coverage ------------------------------------------------------
	if unmapped := unmappedPhones(dict); len(unmapped) > 0 {
		res.fail(fmt.Sprintf("phone coverage: unmapped %s", strings.Join(unmapped, " ")))
		fmt.Fprintf(w, "%s phone coverage: %d unmapped (%s); these fall back to %s\n",
			FailMark, len(unmapped), strings.Join(unmapped, " "), viseme.Schwa)
	} else {
		fmt.Fprintf(w, "%s phone coverage: every dictionary phone maps to a viseme\n", PassMark)
	}

	// ---- probe words -------------------------------------------------------
	probes := cfg.ProbeWords
	if probes == nil {
		probes = DefaultProbeWords
	}
	for _, word := range probes {
		prons, err := dict.Lookup(word)
		switch {
		case err != nil:
			res.fail(fmt.Sprintf("probe word %q: %v", word, err))
			fmt.Fprintf(w, "%s probe word %s: %v\n", FailMark, word, err)
		case len(prons) == 0:
			res.fail(fmt.Sprintf("probe word %q: not in dictionary", word))
			fmt.Fprintf(w, "%s probe word %s: not in dictionary\n", FailMark, word)
		default:
			fmt.Fprintf(w, "%s probe word %s: %s\n", PassMark, word, strings.Join(prons[0], " "))
		}
	}

	return res
}

// checkTable verifies the table has one entry per ARPAbet phone and maps only
// onto mouth-shape visemes.
func checkTable() error {
	table := viseme.Table()
	if len(table) != tableSize {
		return fmt.Errorf("want %d phones, got %d", tableSize, len(table))
	}

	alphabet := viseme.Alphabet()
	for phone, code := range table {
		if code == viseme.Schwa || !slices.Contains(alphabet, code) {
			return fmt.Errorf("phone %s maps to %q, not a mouth-shape viseme", phone, code)
		}
	}
	return nil
}

// unmappedPhones returns the stress-free dictionary phones with no viseme.
func unmappedPhones(dict *cmudict.Dict) []string {
	var out []string
	for _, raw := range dict.Phones() {
		phone := pronounce.StripStress(raw)
		if _, ok := viseme.Lookup(phone); ok || slices.Contains(out, phone) {
			continue
		}
		out = append(out, phone)
	}
	return out
}
