package handler

import (
	"errors"
	"net/http"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

// TokenIssuer signs the bearer token for a logged in session.
type TokenIssuer interface {
	Issue(session *domain.Session) (string, error)
}

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	LoginAttempt(role string, ok bool)
}

type AuthHandler struct {
	credentials ports.CredentialService
	access      ports.AccessService
	tokens      TokenIssuer
	recorder    LoginRecorder
}

func NewAuthHandler(credentials ports.CredentialService, access ports.AccessService, tokens TokenIssuer, recorder LoginRecorder) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		access:      access,
		tokens:      tokens,
		recorder:    recorder,
	}
}

type RegistrationRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	Password          string `json:"password"`
	Role              string `json:"role"`
	ApplicationNumber string `json:"application_number,omitempty"`
}

type SessionResponse struct {
	State                  domain.SessionState `json:"state"`
	Username               string              `json:"username,omitempty"`
	Role                   domain.Role         `json:"role,omitempty"`
	BoundApplicationNumber string              `json:"bound_application_number,omitempty"`
}

type LoginResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		State:                  s.State,
		Username:               s.Username,
		Role:                   s.Role,
		BoundApplicationNumber: s.BoundApplicationNumber,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, _ := domain.ParseRole(req.Role)
	if err := h.credentials.Register(r.Context(), req.Username, req.Password, role); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Account registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		h.recordLogin("UNKNOWN", false)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	session, err := h.access.Login(r.Context(), req.Username, req.Password, role, req.ApplicationNumber)
	if errors.Is(err, domain.ErrAccessDenied) {
		h.recordLogin(string(role), false)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.recordLogin(string(role), true)

	token, err := h.tokens.Issue(session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		Session: toSessionResponse(session),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.access.Logout(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Me describes the caller's session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *AuthHandler) recordLogin(role string, ok bool) {
	if h.recorder != nil {
		h.recorder.LoginAttempt(role, ok)
	}
}
