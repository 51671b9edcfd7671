package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/text"
	"github.com/gorilla/websocket"
)

type wsRequest struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type wsResponse struct {
	ID     string           `json:"id,omitempty"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// handleWS answers every {"id","text"} frame with a result or an error frame
// on the same connection until the client closes it.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := RequestID(ctx)

	conn, err := h.upgrader.Upgrade(w, r, http.Header{RequestIDHeader: {reqID}})
	if err != nil {
		h.log.WarnContext(ctx, "websocket upgrade failed",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(h.bodyLimit(1))
	h.log.InfoContext(ctx, "websocket connected", slog.String("request_id", reqID))

	frames := 0
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.WarnContext(ctx, "websocket read failed",
					slog.String("request_id", reqID),
					slog.String("error", err.Error()),
				)
			}
			break
		}
		frames++

		resp := h.wsAnalyze(r, req)
		_ = conn.SetWriteDeadline(time.Now().Add(h.opts.requestTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			h.log.WarnContext(ctx, "websocket write failed",
				slog.String("request_id", reqID),
				slog.String("error", err.Error()),
			)
			break
		}
	}

	h.log.InfoContext(ctx, "websocket closed",
		slog.String("request_id", reqID),
		slog.Int("frames", frames),
	)
}

func (h *handler) wsAnalyze(r *http.Request, req wsRequest) wsResponse {
	if err := h.checkText(req.Text); err != nil {
		if errors.Is(err, text.ErrEmptyText) {
			return wsResponse{ID: req.ID, Error: "text field is required"}
		}
		return wsResponse{ID: req.ID, Error: err.Error()}
	}

	release, err := h.acquire(r.Context())
	if err != nil {
		return wsResponse{ID: req.ID, Error: "request cancelled while waiting for worker"}
	}
	defer release()

	res, err := h.analyze(r.Context(), req.Text)
	if err != nil {
		return wsResponse{ID: req.ID, Error: "analysis timed out"}
	}
	return wsResponse{ID: req.ID, Result: &res}
}
