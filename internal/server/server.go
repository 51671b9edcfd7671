package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/config"
	"github.com/example/go-visemes/internal/text"
	"github.com/gorilla/websocket"
)

// ErrTextTooLarge is reported when a text exceeds the configured byte limit.
var ErrTextTooLarge = errors.New("text exceeds maximum size")

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Analyzer turns text into viseme sequences.
type Analyzer interface {
	Analyze(ctx context.Context, text string) analysis.Result
	AnalyzeAll(ctx context.Context, texts []string, workers int) ([]analysis.Result, error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	maxBatchTexts  int
	workers        int
	batchWorkers   int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   16384,
		maxBatchTexts:  64,
		workers:        8,
		batchWorkers:   4,
		requestTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes, per text.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithMaxBatchTexts caps the number of texts in one POST /analyze/batch.
func WithMaxBatchTexts(n int) Option {
	return func(o *options) { o.maxBatchTexts = n }
}

// WithWorkers sets the maximum number of concurrent analysis requests.
// Zero disables the limit.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithBatchWorkers sets how many texts of one batch are analyzed in parallel.
func WithBatchWorkers(n int) Option {
	return func(o *options) { o.batchWorkers = n }
}

// WithRequestTimeout sets the per-request analysis deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	analyzer Analyzer
	opts     options
	sem      chan struct{} // semaphore for worker pool
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler returns an http.Handler that serves /health, POST /analyze,
// POST /analyze/batch and the /ws WebSocket endpoint.
func NewHandler(a Analyzer, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		analyzer: a,
		opts:     opts,
		log:      opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/analyze", h.handleAnalyze)
	mux.HandleFunc("/analyze/batch", h.handleBatch)
	mux.HandleFunc("/ws", h.handleWS)
	return withRequestID(mux)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type batchResponse struct {
	Results []analysis.Result `json:"results"`
}

// checkText validates one submitted text.
func (h *handler) checkText(s string) error {
	if _, err := text.CleanInput(s); err != nil {
		return err
	}
	if len(s) > h.opts.maxTextBytes {
		return fmt.Errorf("%w of %d bytes", ErrTextTooLarge, h.opts.maxTextBytes)
	}
	return nil
}

func textStatus(err error) int {
	if errors.Is(err, ErrTextTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// decodeBody reads a JSON request body, bounded by limit bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) (int, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return http.StatusBadRequest, errors.New("request body is required")
	}

	body := http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", limit)
		case errors.Is(err, io.EOF):
			return http.StatusBadRequest, errors.New("request body is required")
		default:
			return http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return 0, nil
}

// bodyLimit leaves room for JSON escaping on top of the text limit.
func (h *handler) bodyLimit(texts int) int64 {
	return int64(texts)*int64(h.opts.maxTextBytes)*6 + 1024
}

// acquire takes a worker slot, honouring cancellation while waiting.
func (h *handler) acquire(ctx context.Context) (release func(), err error) {
	if h.sem == nil {
		return func() {}, nil
	}
	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// analyze runs one analysis under the request timeout.
func (h *handler) analyze(ctx context.Context, s string) (analysis.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.requestTimeout)
	defer cancel()

	done := make(chan analysis.Result, 1)
	go func() { done <- h.analyzer.Analyze(ctx, s) }()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return analysis.Result{}, ctx.Err()
	}
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := RequestID(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if status, err := decodeBody(w, r, h.bodyLimit(1), &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if err := h.checkText(req.Text); err != nil {
		if errors.Is(err, text.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "text field is required")
			return
		}
		writeError(w, textStatus(err), err.Error())
		return
	}

	release, err := h.acquire(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	start := time.Now()
	res, err := h.analyze(ctx, req.Text)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.WarnContext(ctx, "analysis timed out",
			slog.String("request_id", reqID),
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGatewayTimeout, "analysis timed out")
		return
	}

	h.log.InfoContext(ctx, "analysis served",
		slog.String("request_id", reqID),
		slog.Int("text_len", len(req.Text)),
		slog.Int("words", len(res.Detailed)),
		slog.Int("units", len(res.Sequence)),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := RequestID(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req batchRequest
	if status, err := decodeBody(w, r, h.bodyLimit(h.opts.maxBatchTexts), &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts field is required")
		return
	}
	if len(req.Texts) > h.opts.maxBatchTexts {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch exceeds maximum of %d texts", h.opts.maxBatchTexts))
		return
	}
	for i, s := range req.Texts {
		if err := h.checkText(s); err != nil {
			writeError(w, textStatus(err), fmt.Sprintf("texts[%d]: %v", i, err))
			return
		}
	}

	release, err := h.acquire(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	tctx, cancel := context.WithTimeout(ctx, h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	results, err := h.analyzer.AnalyzeAll(tctx, req.Texts, h.opts.batchWorkers)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.WarnContext(ctx, "batch analysis timed out",
			slog.String("request_id", reqID),
			slog.Int("texts", len(req.Texts)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGatewayTimeout, "analysis timed out")
		return
	}

	h.log.InfoContext(ctx, "batch analysis served",
		slog.String("request_id", reqID),
		slog.Int("texts", len(req.Texts)),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server: wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	analyzer        Analyzer
	log             *slog.Logger
	bannerOut       io.Writer
	shutdownTimeout time.Duration
}

// New returns a Server for cfg. The shutdown timeout starts from
// cfg.Server.ShutdownTimeout.
func New(cfg config.Config, a Analyzer) *Server {
	return &Server{
		cfg:             cfg,
		analyzer:        a,
		log:             slog.Default(),
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger sets the logger passed to the handler.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.log = l
	return s
}

// WithBannerOutput sets where the startup banner is printed when
// server.banner is enabled.
func (s *Server) WithBannerOutput(w io.Writer) *Server {
	s.bannerOut = w
	return s
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	if s.analyzer == nil {
		return errors.New("server: no analyzer configured")
	}

	h := NewHandler(s.analyzer,
		WithWorkers(s.cfg.Server.Workers),
		WithBatchWorkers(s.cfg.Analysis.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithLogger(s.log),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.cfg.Server.Banner && s.bannerOut != nil {
		PrintBanner(s.bannerOut, s.cfg.Server.ListenAddr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.Info("server listening", slog.String("addr", s.cfg.Server.ListenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		s.log.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks that a server at addr answers /health with 200.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
