package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
)

type casinoService interface {
	Roll(ctx context.Context, principal application.Principal, wager int64) (application.RollResult, error)
}

// CasinoHandler serves dice wagers. Runs behind RequireAccount.
type CasinoHandler struct {
	service   casinoService
	responder responder
}

func NewCasinoHandler(service casinoService, logger *slog.Logger) *CasinoHandler {
	return &CasinoHandler{service: service, responder: newResponder(logger)}
}

type rollRequest struct {
	Wager int64 `json:"wager"`
}

type rollPayload struct {
	Roll    int64 `json:"roll"`
	Wager   int64 `json:"wager"`
	Payout  int64 `json:"payout"`
	Balance int64 `json:"balance"`
}

func (h *CasinoHandler) Roll(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req rollRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.Roll(r.Context(), principal, req.Wager)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"result": rollPayload{
			Roll:    result.Roll,
			Wager:   result.Wager,
			Payout:  result.Payout,
			Balance: result.Balance,
		},
	})
}
