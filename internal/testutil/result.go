package testutil

import (
	"testing"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/viseme"
)

// AssertConsistent checks the structural invariants of an analysis result:
// non-nil slices, and flattened sequences that match the per-word breakdown.
func AssertConsistent(tb testing.TB, res analysis.Result) {
	tb.Helper()

	if res.Detailed == nil || res.Sequence == nil || res.RawSequence == nil {
		tb.Fatalf("result has nil slices: %+v", res)
	}

	var seq []viseme.Code
	var raw []string
	for i, w := range res.Detailed {
		if len(w.Phonemes) != len(w.RawPhonemes) {
			tb.Fatalf("detailed[%d] %q: %d visemes for %d raw units", i, w.Word, len(w.Phonemes), len(w.RawPhonemes))
		}
		seq = append(seq, w.Phonemes...)
		raw = append(raw, w.RawPhonemes...)
	}

	if len(seq) != len(res.Sequence) {
		tb.Fatalf("sequence has %d units, detailed flattens to %d", len(res.Sequence), len(seq))
	}
	for i := range seq {
		if seq[i] != res.Sequence[i] {
			tb.Fatalf("sequence[%d] = %s, detailed flattens to %s", i, res.Sequence[i], seq[i])
		}
	}

	if len(raw) != len(res.RawSequence) {
		tb.Fatalf("raw_sequence has %d units, detailed flattens to %d", len(res.RawSequence), len(raw))
	}
	for i := range raw {
		if raw[i] != res.RawSequence[i] {
			tb.Fatalf("raw_sequence[%d] = %s, detailed flattens to %s", i, res.RawSequence[i], raw[i])
		}
	}
}
