package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/persistence"
)

type leaderboardService interface {
	Top(ctx context.Context, sort string) ([]persistence.LeaderboardRow, error)
}

// LeaderboardHandler serves the public standings.
type LeaderboardHandler struct {
	service   leaderboardService
	responder responder
}

func NewLeaderboardHandler(service leaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{service: service, responder: newResponder(logger)}
}

func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rows, err := h.service.Top(r.Context(), r.URL.Query().Get("sort"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]leaderboardRowPayload, 0, len(rows))
	for i, row := range rows {
		payload = append(payload, leaderboardRowPayload{
			Rank:     i + 1,
			Username: row.Username,
			Balance:  row.Balance,
			Winnings: row.Winnings,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"rows": payload})
}
