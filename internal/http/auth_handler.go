package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eldrun/eldrun/internal/application"
)

type authService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.AuthResult, error)
	Login(ctx context.Context, username, password string) (application.AuthResult, error)
}

// AuthHandler serves account registration, login, and logout.
type AuthHandler struct {
	service   authService
	secure    bool
	responder responder
}

// NewAuthHandler wires the handler. secure controls the cookie Secure flag;
// leave it off for plain-HTTP local runs.
func NewAuthHandler(service authService, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, secure: secure, responder: newResponder(logger)}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Register(r.Context(), application.RegisterParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"account": accountPayload{ID: result.Account.ID, Username: result.Account.Username},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"account": accountPayload{ID: result.Account.ID, Username: result.Account.Username},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Me reflects the authenticated principal back to the client. Runs behind
// RequireAccount.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"account": accountPayload{ID: principal.AccountID, Username: principal.Username},
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
