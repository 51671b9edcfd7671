package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/server"
	"github.com/example/go-visemes/internal/testutil"
	"github.com/example/go-visemes/internal/viseme"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *analysis.Analyzer {
	dict := testutil.NewStubDictionary(map[string][]string{
		"HELLO": {"HH AH0 L OW1"},
		"WORLD": {"W ER1 L D"},
		"STOP":  {"S T AA1 P"},
	})
	return analysis.New(dict, analysis.WithLogger(slog.New(&testutil.CapturingHandler{})))
}

func newTestHandler(opts ...server.Option) http.Handler {
	opts = append([]server.Option{server.WithLogger(slog.New(&testutil.CapturingHandler{}))}, opts...)
	return server.NewHandler(newTestAnalyzer(), opts...)
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "version")
}

// ---------------------------------------------------------------------------
// POST /analyze
// ---------------------------------------------------------------------------

func TestAnalyze_ReturnsResultJSON(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(h, "/analyze", `{"text":"Hello, world!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res analysis.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	testutil.AssertConsistent(t, res)

	assert.Equal(t, []viseme.Code{
		viseme.AHH, viseme.AHH, viseme.TTH, viseme.OHH,
		viseme.PauseMed,
		viseme.UUU, viseme.RRR, viseme.TTH, viseme.TTH,
		viseme.PauseLong,
	}, res.Sequence)
	assert.Equal(t, "Hello", res.Detailed[0].Word)
}

func TestAnalyze_ResponseUsesWireFieldNames(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(h, "/analyze", `{"text":"stop"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `{
		"detailed": [{"word":"stop","raw_phonemes":["S","T","AA","P"],"phonemes":["SSS","TTH","AAA","MBP"]}],
		"sequence": ["SSS","TTH","AAA","MBP"],
		"raw_sequence": ["S","T","AA","P"]
	}`, rec.Body.String())
}

func TestAnalyze_MissingBodyIs400(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"text":`, "invalid JSON"},
		{"empty text", `{"text":""}`, "text field is required"},
		{"whitespace text", `{"text":"  \n\t "}`, "text field is required"},
		{"missing field", `{}`, "text field is required"},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, "/analyze", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.want)
		})
	}
}

func TestAnalyze_WrongMethodIs405(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze_PunctuationOnlyTextIsAnalyzed(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(h, "/analyze", `{"text":"@#$%"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"detailed":[],"sequence":[],"raw_sequence":[]}`, rec.Body.String())
}

// ---------------------------------------------------------------------------
// POST /analyze/batch
// ---------------------------------------------------------------------------

func TestBatch_ReturnsResultsInOrder(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(h, "/analyze/batch", `{"texts":["stop","hello world","world."]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Results []analysis.Result `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Results, 3)

	assert.Equal(t, "stop", body.Results[0].Detailed[0].Word)
	assert.Len(t, body.Results[1].Detailed, 2)
	assert.Equal(t, []string{"W", "ER", "L", "D", "PAUSE_LONG"}, body.Results[2].RawSequence)
	for _, res := range body.Results {
		testutil.AssertConsistent(t, res)
	}
}

func TestBatch_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"no texts", `{"texts":[]}`, http.StatusBadRequest, "texts field is required"},
		{"missing field", `{}`, http.StatusBadRequest, "texts field is required"},
		{"empty member", `{"texts":["stop",""]}`, http.StatusBadRequest, "texts[1]"},
		{"oversized member", `{"texts":["stop","hello world"]}`, http.StatusRequestEntityTooLarge, "texts[1]"},
		{"too many texts", `{"texts":["a","b","c","d"]}`, http.StatusRequestEntityTooLarge, "maximum of 3 texts"},
		{"invalid json", `{"texts":"stop"}`, http.StatusBadRequest, "invalid JSON"},
	}

	h := newTestHandler(server.WithMaxTextBytes(8), server.WithMaxBatchTexts(3))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, "/analyze/batch", tt.body)
			require.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.want)
		})
	}
}

func TestBatch_WrongMethodIs405(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/analyze/batch", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ---------------------------------------------------------------------------
// X-Request-ID
// ---------------------------------------------------------------------------

func TestRequestID_AssignedWhenMissing(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	_, err := uuid.Parse(rec.Header().Get(server.RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestID_EchoesValidIncomingID(t *testing.T) {
	h := newTestHandler()
	id := uuid.NewString()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, id)
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(server.RequestIDHeader))
}

func TestRequestID_ReplacesInvalidIncomingID(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "not a uuid\r\n")
	h.ServeHTTP(rec, req)

	got := rec.Header().Get(server.RequestIDHeader)
	assert.NotEqual(t, "not a uuid\r\n", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestRequestID_EmptyOutsideHandler(t *testing.T) {
	assert.Empty(t, server.RequestID(context.Background()))
}

// ---------------------------------------------------------------------------
// ParseLogLevel
// ---------------------------------------------------------------------------

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		level   string
		wantLvl slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			lvl, err := server.ParseLogLevel(tc.level)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLvl, lvl)
		})
	}
}

func TestParseLogLevel_InvalidLevelReturnsError(t *testing.T) {
	_, err := server.ParseLogLevel("verbose")
	assert.Error(t, err)
}
