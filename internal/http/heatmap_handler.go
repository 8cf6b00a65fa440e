package http

import (
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
)

// HeatmapHandler exposes the in-memory activity ring.
type HeatmapHandler struct {
	heatmap   *application.Heatmap
	responder responder
}

func NewHeatmapHandler(heatmap *application.Heatmap, logger *slog.Logger) *HeatmapHandler {
	return &HeatmapHandler{heatmap: heatmap, responder: newResponder(logger)}
}

func (h *HeatmapHandler) Points(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.heatmap == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"points": h.heatmap.Points()})
}

type heatmapEventRequest struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Kind string   `json:"kind"`
}

func (h *HeatmapHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.heatmap == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req heatmapEventRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.X == nil || req.Y == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "Missing coordinates"})
		return
	}

	h.heatmap.Record(*req.X, *req.Y, req.Kind)
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
