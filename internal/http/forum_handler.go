package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

type forumService interface {
	CreateThread(ctx context.Context, principal application.Principal, input application.ThreadInput) (persistence.ForumThread, error)
	ListThreads(ctx context.Context) ([]persistence.ForumThread, error)
	Thread(ctx context.Context, threadID string) (application.ThreadDetail, error)
	Reply(ctx context.Context, principal application.Principal, threadID, body string) (persistence.ForumPost, error)
}

// ForumHandler serves discussion threads. Reads are public; writes run
// behind RequireAccount.
type ForumHandler struct {
	service   forumService
	responder responder
}

func NewForumHandler(service forumService, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{service: service, responder: newResponder(logger)}
}

func (h *ForumHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	threads, err := h.service.ListThreads(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]threadPayload, 0, len(threads))
	for _, thread := range threads {
		payload = append(payload, toThreadPayload(thread))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"threads": payload})
}

type threadRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *ForumHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req threadRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	thread, err := h.service.CreateThread(r.Context(), principal, application.ThreadInput{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"thread": toThreadPayload(thread)})
}

func (h *ForumHandler) Thread(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	detail, err := h.service.Thread(r.Context(), r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	posts := make([]postPayload, 0, len(detail.Posts))
	for _, post := range detail.Posts {
		posts = append(posts, toPostPayload(post))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"thread": toThreadPayload(detail.Thread),
		"posts":  posts,
	})
}

type postRequest struct {
	Body string `json:"body"`
}

func (h *ForumHandler) Reply(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	post, err := h.service.Reply(r.Context(), principal, r.PathValue("id"), req.Body)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"post": toPostPayload(post)})
}
