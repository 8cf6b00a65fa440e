package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

type shopService interface {
	ListItems(ctx context.Context) ([]persistence.ShopItem, error)
	Purchase(ctx context.Context, principal application.Principal, itemID string) (persistence.Purchase, persistence.Wallet, error)
}

// ShopHandler serves the catalog and purchases. Listing is public; buying
// runs behind RequireAccount.
type ShopHandler struct {
	service   shopService
	responder responder
}

func NewShopHandler(service shopService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{service: service, responder: newResponder(logger)}
}

func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]shopItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, toShopItemPayload(item))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"items": payload})
}

type purchaseRequest struct {
	ItemID string `json:"itemId"`
}

func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	purchase, wallet, err := h.service.Purchase(r.Context(), principal, req.ItemID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"purchase": map[string]any{
			"id":        purchase.ID,
			"itemId":    purchase.ItemID,
			"pricePaid": purchase.PricePaid,
		},
		"wallet": toWalletPayload(wallet),
	})
}
