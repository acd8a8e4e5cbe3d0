package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/middleware"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps domain errors to status codes. Anything unexpected is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid input", Fields: validation.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
	case errors.Is(err, domain.ErrDuplicateUsername):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "username is not available"})
	case errors.Is(err, domain.ErrRetracted):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "visit record was retracted and cannot be edited"})
	case errors.Is(err, domain.ErrNotArmed):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "request the deletion before confirming it"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "please retry"})
	default:
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// requireSession fetches the session set by the auth middleware.
func requireSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
		return nil, false
	}
	return session, true
}

// parseDate accepts YYYY-MM-DD. An empty string yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
