package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

type opsService interface {
	CreateSession(ctx context.Context, params application.CreateSessionParams) (persistence.Session, error)
	SessionDetail(ctx context.Context, code string) (application.Snapshot, error)
	Timer(ctx context.Context, code, action string) (application.TimerState, error)
	AddPin(ctx context.Context, code string, input application.PinInput) (persistence.Pin, error)
	AddAlert(ctx context.Context, code string, input application.AlertInput) (persistence.Alert, error)
	RecordResourceEvent(ctx context.Context, code string, input application.ResourceEventInput) (persistence.ResourceEvent, error)
	AssignRole(ctx context.Context, code string, input application.RoleInput) (persistence.RoleAssignment, error)
}

// OpsHandler serves the session board API.
type OpsHandler struct {
	service   opsService
	heatmap   *application.Heatmap
	responder responder
}

// NewOpsHandler wires the handler. The heatmap is optional; when present,
// pin and alert placements feed it.
func NewOpsHandler(service opsService, heatmap *application.Heatmap, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{service: service, heatmap: heatmap, responder: newResponder(logger)}
}

type createSessionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *OpsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	session, err := h.service.CreateSession(r.Context(), application.CreateSessionParams{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"session": map[string]string{
			"id":    session.ID,
			"code":  session.Code,
			"title": session.Title,
		},
	})
}

func (h *OpsHandler) SessionDetail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snapshot, err := h.service.SessionDetail(r.Context(), r.PathValue("code"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSnapshotPayload(snapshot))
}

type timerRequest struct {
	Action string `json:"action"`
}

func (h *OpsHandler) Timer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req timerRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	state, err := h.service.Timer(r.Context(), r.PathValue("code"), req.Action)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"timer": toTimerPayload(state)})
}

type pinRequest struct {
	Type  string   `json:"type"`
	Label string   `json:"label"`
	Note  string   `json:"note"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

func (h *OpsHandler) AddPin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req pinRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	pin, err := h.service.AddPin(r.Context(), r.PathValue("code"), application.PinInput{
		Type:  req.Type,
		Label: req.Label,
		Note:  req.Note,
		X:     req.X,
		Y:     req.Y,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if h.heatmap != nil {
		h.heatmap.Record(pin.X, pin.Y, "pin")
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"pin": toPinPayload(pin)})
}

type alertRequest struct {
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

func (h *OpsHandler) AddAlert(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req alertRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	alert, err := h.service.AddAlert(r.Context(), r.PathValue("code"), application.AlertInput{
		Type:     req.Type,
		Severity: req.Severity,
		Message:  req.Message,
		X:        req.X,
		Y:        req.Y,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if h.heatmap != nil && alert.X != nil && alert.Y != nil {
		h.heatmap.Record(*alert.X, *alert.Y, "alert")
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"alert": toAlertPayload(alert)})
}

type resourceEventRequest struct {
	Resource string   `json:"resource"`
	Delta    *float64 `json:"delta"`
	Note     string   `json:"note"`
}

func (h *OpsHandler) RecordResourceEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req resourceEventRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.RecordResourceEvent(r.Context(), r.PathValue("code"), application.ResourceEventInput{
		Resource: req.Resource,
		Delta:    req.Delta,
		Note:     req.Note,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"event": toResourceEventPayload(event)})
}

type roleRequest struct {
	Role     string `json:"role"`
	Nickname string `json:"nickname"`
}

func (h *OpsHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.AssignRole(r.Context(), r.PathValue("code"), application.RoleInput{
		Role:     req.Role,
		Nickname: req.Nickname,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"assignment": toRoleAssignmentPayload(assignment)})
}

// decodeBody parses a JSON request body. An empty body decodes to the zero
// request so optional-field endpoints accept bare POSTs.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
