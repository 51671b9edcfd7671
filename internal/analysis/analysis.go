// Package analysis runs the text → phoneme → viseme pipeline.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/go-visemes/internal/pronounce"
	"github.com/example/go-visemes/internal/text"
	"github.com/example/go-visemes/internal/viseme"
	"golang.org/x/sync/errgroup"
)

// WordResult is the breakdown of one token. Pause tokens carry their marker
// as the only raw and standardized unit.
type WordResult struct {
	Word        string             `json:"word"`
	RawPhonemes []string           `json:"raw_phonemes"`
	Phonemes    []viseme.Code      `json:"phonemes"`
	Fallback    pronounce.Fallback `json:"fallback,omitempty"`
}

// IsPause reports whether w came from punctuation.
func (w WordResult) IsPause() bool {
	return len(w.RawPhonemes) == 1 && viseme.IsPause(w.RawPhonemes[0])
}

// Result is the outcome of analyzing one text. Sequence and RawSequence are
// the per-word sequences of Detailed concatenated in order.
type Result struct {
	Detailed    []WordResult  `json:"detailed"`
	Sequence    []viseme.Code `json:"sequence"`
	RawSequence []string      `json:"raw_sequence"`
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for pipeline and resolver diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// Analyzer converts text to viseme sequences. It is safe for concurrent use
// when its dictionary is.
type Analyzer struct {
	resolver *pronounce.Resolver
	log      *slog.Logger
}

// New returns an Analyzer that resolves words through dict.
func New(dict pronounce.Dictionary, opts ...Option) *Analyzer {
	a := &Analyzer{log: slog.Default()}
	for _, fn := range opts {
		fn(a)
	}
	a.resolver = pronounce.NewResolver(dict, pronounce.WithLogger(a.log))
	return a
}

// Analyze tokenizes s, resolves every word, classifies punctuation and maps
// the result onto the viseme alphabet. It always returns a complete Result;
// lookup problems degrade to fallbacks that are logged and tagged on the
// affected WordResult.
func (a *Analyzer) Analyze(ctx context.Context, s string) Result {
	start := time.Now()
	a.log.InfoContext(ctx, "analysis started", slog.Int("text_len", len(s)))

	tokens := text.Tokenize(s)

	words := make([]WordResult, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, a.resolveToken(tok))
	}

	fallbacks := 0
	for i := range words {
		if words[i].IsPause() {
			continue
		}
		a.standardize(ctx, &words[i])
		if words[i].Fallback != pronounce.FallbackNone {
			fallbacks++
		}
	}

	res := flatten(words)

	a.log.InfoContext(ctx, "analysis complete",
		slog.Int("text_len", len(s)),
		slog.Int("tokens", len(tokens)),
		slog.Int("units", len(res.Sequence)),
		slog.Int("fallbacks", fallbacks),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return res
}

// AnalyzeAll analyzes independent texts on up to workers goroutines and
// returns the results in input order. workers <= 0 means no limit. The only
// error is the context's, when it is cancelled before all texts are done.
func (a *Analyzer) AnalyzeAll(ctx context.Context, texts []string, workers int) ([]Result, error) {
	out := make([]Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, s := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Analyze(gctx, s)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analyzer) resolveToken(tok text.Token) WordResult {
	if marker, ok := viseme.PauseFor(tok.Kind); ok {
		return WordResult{
			Word:        tok.Text,
			RawPhonemes: []string{string(marker)},
			Phonemes:    []viseme.Code{marker},
		}
	}

	res := a.resolver.Resolve(tok.Text)
	return WordResult{
		Word:        tok.Text,
		RawPhonemes: res.Phonemes,
		Fallback:    res.Fallback,
	}
}

func (a *Analyzer) standardize(ctx context.Context, w *WordResult) {
	w.Phonemes = make([]viseme.Code, len(w.RawPhonemes))
	for i, unit := range w.RawPhonemes {
		code, ok := viseme.Lookup(unit)
		if !ok {
			a.log.WarnContext(ctx, "unmapped phonetic code",
				slog.String("unit", unit),
				slog.String("word", w.Word),
			)
			code = viseme.Schwa
		}
		w.Phonemes[i] = code
	}

	a.log.DebugContext(ctx, "word mapped",
		slog.String("word", w.Word),
		slog.Any("raw", w.RawPhonemes),
		slog.Any("visemes", w.Phonemes),
	)
}

func flatten(words []WordResult) Result {
	res := Result{
		Detailed:    words,
		Sequence:    make([]viseme.Code, 0, len(words)*4),
		RawSequence: make([]string, 0, len(words)*4),
	}
	for _, w := range words {
		res.Sequence = append(res.Sequence, w.Phonemes...)
		res.RawSequence = append(res.RawSequence, w.RawPhonemes...)
	}
	return res
}
