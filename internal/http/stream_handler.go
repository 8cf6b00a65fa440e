package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

const (
	defaultStreamInterval = 2500 * time.Millisecond
	eventsHeartbeat       = 15 * time.Second
)

type streamService interface {
	GetSessionByCode(ctx context.Context, code string) (persistence.Session, error)
	SessionDetail(ctx context.Context, code string) (application.Snapshot, error)
	LatestAlertAt(ctx context.Context, sessionID string) (*time.Time, error)
}

// StreamHandler serves the push endpoints. The board stream recomputes the
// full snapshot on a fixed interval rather than reacting to writes; the
// interval is short enough for a shared map UI and keeps the write path
// free of fan-out bookkeeping.
type StreamHandler struct {
	service   streamService
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	responder responder
}

// NewStreamHandler wires the handler. A non-positive interval falls back to
// the 2.5s default.
func NewStreamHandler(service streamService, interval time.Duration, now func() time.Time, logger *slog.Logger) *StreamHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	if now == nil {
		now = time.Now
	}
	return &StreamHandler{
		service:   service,
		interval:  interval,
		now:       now,
		logger:    defaultLogger(logger),
		responder: newResponder(logger),
	}
}

// Board streams session snapshots as server-sent events until the client
// disconnects.
func (h *StreamHandler) Board(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingCode)
		return
	}
	session, err := h.service.GetSessionByCode(r.Context(), code)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	logger := handlerLogger(r.Context(), h.logger, "stream", "board", "code", code)
	ctx := r.Context()

	sendSnapshot := func() bool {
		latestAlert, err := h.service.LatestAlertAt(ctx, session.ID)
		if err != nil {
			// Keep the connection alive on a transient failure; the
			// client sees a comment, not a broken stream.
			logger.WarnContext(ctx, "alert lookup failed, sending heartbeat", "error", err)
			return writeComment(w, flusher, "heartbeat")
		}
		snapshot, err := h.service.SessionDetail(ctx, code)
		if err != nil {
			logger.WarnContext(ctx, "snapshot failed, sending heartbeat", "error", err)
			return writeComment(w, flusher, "heartbeat")
		}
		payload := toSnapshotPayload(snapshot)
		payload.LatestAlertAt = latestAlert
		return writeEvent(w, flusher, "snapshot", payload)
	}

	if !sendSnapshot() {
		return
	}
	if !writeComment(w, flusher, "ping") {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "client disconnected")
			return
		case <-ticker.C:
			if !sendSnapshot() {
				return
			}
		}
	}
}

type eventsAck struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"serverTime"`
}

type eventsAnnouncement struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Events is the site-wide announcement channel: a connection ack, one
// announcement, then periodic heartbeats.
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	if !writeEvent(w, flusher, "connected", eventsAck{Status: "ok", ServerTime: h.now().UTC()}) {
		return
	}
	if !writeEvent(w, flusher, "announcement", eventsAnnouncement{
		Title:   "Welcome to Eldrun",
		Message: "Season standings update in real time on the leaderboard.",
	}) {
		return
	}

	ticker := time.NewTicker(eventsHeartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !writeComment(w, flusher, "heartbeat") {
				return
			}
		}
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

func writeComment(w http.ResponseWriter, flusher http.Flusher, comment string) bool {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
