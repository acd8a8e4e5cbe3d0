package domain

import "time"

type SessionState string

const (
	StateAnonymous      SessionState = "ANONYMOUS"
	StateAuthenticating SessionState = "AUTHENTICATING"
	StateDoctor         SessionState = "DOCTOR"
	StatePatient        SessionState = "PATIENT"
)

// PendingDelete is an armed, not yet confirmed, record deletion.
type PendingDelete struct {
	ApplicationNumber string    `json:"application_number"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Session belongs to one connected client. It is created anonymous, populated
// on login and cleared on logout.
type Session struct {
	ID                     string         `json:"id"`
	State                  SessionState   `json:"state"`
	Username               string         `json:"username,omitempty"`
	Role                   Role           `json:"role,omitempty"`
	BoundApplicationNumber string         `json:"bound_application_number,omitempty"`
	PendingDelete          *PendingDelete `json:"pending_delete,omitempty"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, State: StateAnonymous}
}

func (s *Session) Authenticated() bool {
	return s != nil && (s.State == StateDoctor || s.State == StatePatient)
}

// Clear resets the session to anonymous, keeping its id.
func (s *Session) Clear() {
	*s = Session{ID: s.ID, State: StateAnonymous}
}

// CanRead reports whether the session may read the records of applicationNumber.
func (s *Session) CanRead(applicationNumber string) error {
	switch {
	case s == nil:
		return ErrAccessDenied
	case s.State == StateDoctor:
		return nil
	case s.State == StatePatient && s.BoundApplicationNumber == applicationNumber:
		return nil
	}
	return ErrAccessDenied
}

// CanWrite reports whether the session may mutate records.
func (s *Session) CanWrite() error {
	if s == nil || s.State != StateDoctor {
		return ErrAccessDenied
	}
	return nil
}
