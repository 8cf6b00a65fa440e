package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eldrun/eldrun/internal/application"
)

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	validation := &application.ValidationError{FieldErrors: map[string]string{"wager": "Wager must be positive"}}

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", validation, http.StatusBadRequest, "Wager must be positive"},
		{"unknown action", fmt.Errorf("timer: %w", application.ErrUnknownAction), http.StatusBadRequest, "Unknown timer action"},
		{"not found", application.ErrNotFound, http.StatusNotFound, "Not found"},
		{"unauthorized", application.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
		{"bad credentials", application.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{"duplicate", application.ErrAlreadyExists, http.StatusConflict, "Already taken"},
		{"insufficient funds", application.ErrInsufficientFunds, http.StatusConflict, "Insufficient funds"},
		{"bonus claimed", application.ErrBonusClaimed, http.StatusConflict, "Bonus already claimed"},
	}

	r := newResponder(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.handleServiceError(context.Background(), rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tc.wantMessage)
			}
		})
	}
}

func TestHandleServiceErrorSurfacesUnexpectedMessage(t *testing.T) {
	r := newResponder(nil)
	rec := httptest.NewRecorder()

	r.handleServiceError(context.Background(), rec, errors.New("store unavailable: disk I/O error"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "store unavailable: disk I/O error" {
		t.Errorf("message = %q, want the wrapped error text", body.Message)
	}
}
