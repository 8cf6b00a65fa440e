package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

type walletService interface {
	Wallet(ctx context.Context, principal application.Principal) (persistence.Wallet, error)
	ClaimBonus(ctx context.Context, principal application.Principal) (persistence.Wallet, error)
}

// WalletHandler serves balance reads and the welcome bonus. All routes run
// behind RequireAccount.
type WalletHandler struct {
	service   walletService
	responder responder
}

func NewWalletHandler(service walletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{service: service, responder: newResponder(logger)}
}

func (h *WalletHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	wallet, err := h.service.Wallet(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"wallet": toWalletPayload(wallet)})
}

func (h *WalletHandler) ClaimBonus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	wallet, err := h.service.ClaimBonus(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"wallet": toWalletPayload(wallet)})
}
