package analysis_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/cmudict"
	"github.com/example/go-visemes/internal/pronounce"
	"github.com/example/go-visemes/internal/testutil"
	"github.com/example/go-visemes/internal/text"
	"github.com/example/go-visemes/internal/viseme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) (*analysis.Analyzer, *testutil.CapturingHandler) {
	t.Helper()

	dict := testutil.NewStubDictionary(map[string][]string{
		"HELLO": {"HH AH0 L OW1", "HH EH0 L OW1"},
		"WORLD": {"W ER1 L D"},
		"STOP":  {"S T AA1 P"},
		"AND":   {"AH0 N D"},
		"ODD":   {"AA1 QX D"},
	}).Fail("BROKEN")
	logs := &testutil.CapturingHandler{}

	return analysis.New(dict, analysis.WithLogger(slog.New(logs))), logs
}

func TestAnalyze_HelloWorld(t *testing.T) {
	a, _ := newAnalyzer(t)

	res := a.Analyze(context.Background(), "Hello, world!")
	testutil.AssertConsistent(t, res)

	require.Len(t, res.Detailed, 4)

	assert.Equal(t, analysis.WordResult{
		Word:        "Hello",
		RawPhonemes: []string{"HH", "AH", "L", "OW"},
		Phonemes:    []viseme.Code{viseme.AHH, viseme.AHH, viseme.TTH, viseme.OHH},
	}, res.Detailed[0])
	assert.Equal(t, analysis.WordResult{
		Word:        ",",
		RawPhonemes: []string{"PAUSE_MED"},
		Phonemes:    []viseme.Code{viseme.PauseMed},
	}, res.Detailed[1])
	assert.Equal(t, analysis.WordResult{
		Word:        "world",
		RawPhonemes: []string{"W", "ER", "L", "D"},
		Phonemes:    []viseme.Code{viseme.UUU, viseme.RRR, viseme.TTH, viseme.TTH},
	}, res.Detailed[2])
	assert.Equal(t, analysis.WordResult{
		Word:        "!",
		RawPhonemes: []string{"PAUSE_LONG"},
		Phonemes:    []viseme.Code{viseme.PauseLong},
	}, res.Detailed[3])

	assert.Equal(t, []viseme.Code{
		viseme.AHH, viseme.AHH, viseme.TTH, viseme.OHH,
		viseme.PauseMed,
		viseme.UUU, viseme.RRR, viseme.TTH, viseme.TTH,
		viseme.PauseLong,
	}, res.Sequence)
	assert.Equal(t, []string{
		"HH", "AH", "L", "OW", "PAUSE_MED", "W", "ER", "L", "D", "PAUSE_LONG",
	}, res.RawSequence)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a, _ := newAnalyzer(t)

	for _, in := range []string{"", "   ", "\n\t", "@#$%"} {
		res := a.Analyze(context.Background(), in)
		testutil.AssertConsistent(t, res)
		assert.Empty(t, res.Detailed, "input %q", in)
		assert.Empty(t, res.Sequence, "input %q", in)
		assert.Empty(t, res.RawSequence, "input %q", in)
	}
}

func TestAnalyze_EmptyInputMarshalsToEmptyArrays(t *testing.T) {
	a, _ := newAnalyzer(t)

	b, err := json.Marshal(a.Analyze(context.Background(), ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"detailed":[],"sequence":[],"raw_sequence":[]}`, string(b))
}

func TestAnalyze_PauseTaxonomy(t *testing.T) {
	a, _ := newAnalyzer(t)

	res := a.Analyze(context.Background(), ". ! ? , ; : -")
	testutil.AssertConsistent(t, res)

	assert.Equal(t, []viseme.Code{
		viseme.PauseLong, viseme.PauseLong, viseme.PauseLong,
		viseme.PauseMed, viseme.PauseMed, viseme.PauseMed,
		viseme.PauseShort,
	}, res.Sequence)
	for _, w := range res.Detailed {
		assert.True(t, w.IsPause(), w.Word)
	}
}

func TestAnalyze_UnknownWordSpellsOut(t *testing.T) {
	a, logs := newAnalyzer(t)

	res := a.Analyze(context.Background(), "Xqzj")
	testutil.AssertConsistent(t, res)

	require.Len(t, res.Detailed, 1)
	w := res.Detailed[0]
	assert.Equal(t, []string{"X", "Q", "Z", "J"}, w.RawPhonemes)
	assert.Equal(t, pronounce.FallbackUnresolved, w.Fallback)

	want := make([]viseme.Code, len(w.RawPhonemes))
	for i, u := range w.RawPhonemes {
		want[i] = viseme.Standardize(u)
	}
	assert.Equal(t, want, w.Phonemes)
	assert.Equal(t, []viseme.Code{viseme.Schwa, viseme.Schwa, viseme.SSS, viseme.Schwa}, w.Phonemes)

	// one for the unresolved word, one per unmapped letter
	assert.Len(t, logs.AtLevel(slog.LevelWarn), 4)
}

func TestAnalyze_LookupFailureIsRecovered(t *testing.T) {
	a, logs := newAnalyzer(t)

	res := a.Analyze(context.Background(), "broken stop")
	testutil.AssertConsistent(t, res)

	require.Len(t, res.Detailed, 2)
	assert.Equal(t, pronounce.FallbackLookupFailed, res.Detailed[0].Fallback)
	assert.Equal(t, []string{"B", "R", "O", "K", "E", "N"}, res.Detailed[0].RawPhonemes)

	// processing continues with the next token
	assert.Equal(t, pronounce.FallbackNone, res.Detailed[1].Fallback)
	assert.Equal(t, []viseme.Code{viseme.SSS, viseme.TTH, viseme.AAA, viseme.MBP}, res.Detailed[1].Phonemes)

	assert.Len(t, logs.AtLevel(slog.LevelError), 1)
}

func TestAnalyze_UnmappedCodeBecomesSchwa(t *testing.T) {
	a, logs := newAnalyzer(t)

	res := a.Analyze(context.Background(), "odd")

	require.Len(t, res.Detailed, 1)
	assert.Equal(t, []viseme.Code{viseme.AAA, viseme.Schwa, viseme.TTH}, res.Detailed[0].Phonemes)
	assert.Equal(t, pronounce.FallbackNone, res.Detailed[0].Fallback)

	warns := logs.AtLevel(slog.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "QX", testutil.Attrs(warns[0])["unit"])
}

func TestAnalyze_NumericWordKeepsItsSlot(t *testing.T) {
	a, _ := newAnalyzer(t)

	res := a.Analyze(context.Background(), "stop 42 and")
	testutil.AssertConsistent(t, res)

	require.Len(t, res.Detailed, 3)
	assert.Equal(t, "42", res.Detailed[1].Word)
	assert.Empty(t, res.Detailed[1].Phonemes)
	assert.NotNil(t, res.Detailed[1].Phonemes)
}

func TestAnalyze_DetailedMatchesTokenCount(t *testing.T) {
	a := analysis.New(cmudict.Bundled(), analysis.WithLogger(testLogger()))

	inputs := []string{
		"Hello world",
		"The quick brown fox jumps over the lazy dog",
		"How are you today?",
		"First, let me think about that. Well, I believe the answer is clear.",
		"Stop - and listen to this important message!",
		"Hello, my name is John. I'm a software developer.",
		"'quoted' words -- and (parentheses)...",
		"Zxqv blorf, glimp!",
	}

	for _, in := range inputs {
		res := a.Analyze(context.Background(), in)
		testutil.AssertConsistent(t, res)
		assert.Len(t, res.Detailed, len(text.Tokenize(in)), in)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := analysis.New(cmudict.Bundled(), analysis.WithLogger(testLogger()))
	in := "Hello, my name is John. I'm a software developer - blorf!"

	first := a.Analyze(context.Background(), in)
	second := a.Analyze(context.Background(), in)

	assert.Equal(t, first, second)
}

func TestAnalyze_BundledDictionarySentence(t *testing.T) {
	a := analysis.New(cmudict.Bundled(), analysis.WithLogger(testLogger()))

	res := a.Analyze(context.Background(), "Stop - and listen!")

	assert.Equal(t, []viseme.Code{
		viseme.SSS, viseme.TTH, viseme.AAA, viseme.MBP,
		viseme.PauseShort,
		viseme.AHH, viseme.TTH, viseme.TTH,
		viseme.TTH, viseme.IEE, viseme.SSS, viseme.AHH, viseme.TTH,
		viseme.PauseLong,
	}, res.Sequence)
}

func TestAnalyze_LogsStartAndCompletion(t *testing.T) {
	a, logs := newAnalyzer(t)

	a.Analyze(context.Background(), "Hello world.")

	infos := logs.AtLevel(slog.LevelInfo)
	require.Len(t, infos, 2)
	assert.Equal(t, "analysis started", infos[0].Message)
	assert.Equal(t, "analysis complete", infos[1].Message)

	attrs := testutil.Attrs(infos[1])
	assert.EqualValues(t, 3, attrs["tokens"])
	assert.EqualValues(t, 9, attrs["units"])
	assert.Contains(t, attrs, "duration_ms")
}

func TestAnalyzeAll_PreservesOrder(t *testing.T) {
	a := analysis.New(cmudict.Bundled(), analysis.WithLogger(testLogger()))

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("hello %s world", string(rune('a'+i%26)))
	}

	results, err := a.AnalyzeAll(context.Background(), texts, 4)
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	for i, res := range results {
		assert.Equal(t, a.Analyze(context.Background(), texts[i]), res, "text %d", i)
	}
}

func TestAnalyzeAll_Empty(t *testing.T) {
	a, _ := newAnalyzer(t)

	results, err := a.AnalyzeAll(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAnalyzeAll_CancelledContext(t *testing.T) {
	a, _ := newAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.AnalyzeAll(ctx, []string{"hello", "world"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func testLogger() *slog.Logger {
	return slog.New(&testutil.CapturingHandler{})
}
