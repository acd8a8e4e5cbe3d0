package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSession_CanRead(t *testing.T) {
	doctor := &Session{ID: "s1", State: StateDoctor, Role: RoleDoctor}
	patient := &Session{ID: "s2", State: StatePatient, Role: RolePatient, BoundApplicationNumber: "AB12CD34"}
	anonymous := NewSession("s3")
	authenticating := &Session{ID: "s4", State: StateAuthenticating}

	tests := []struct {
		name    string
		session *Session
		number  string
		allowed bool
	}{
		{"doctor_any_record", doctor, "ZZ99ZZ99", true},
		{"patient_bound_record", patient, "AB12CD34", true},
		{"patient_other_record", patient, "ZZ99ZZ99", false},
		{"anonymous", anonymous, "AB12CD34", false},
		{"authenticating", authenticating, "AB12CD34", false},
		{"nil_session", nil, "AB12CD34", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.CanRead(tt.number)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrAccessDenied) {
				t.Errorf("expected ErrAccessDenied, got %v", err)
			}
		})
	}
}

func TestSession_CanWrite(t *testing.T) {
	if err := (&Session{State: StateDoctor}).CanWrite(); err != nil {
		t.Errorf("doctor should write, got %v", err)
	}
	if err := (&Session{State: StatePatient, BoundApplicationNumber: "AB12CD34"}).CanWrite(); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("patient must not write, got %v", err)
	}
	if err := NewSession("x").CanWrite(); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("anonymous must not write, got %v", err)
	}
}

func TestSession_Clear(t *testing.T) {
	s := &Session{
		ID:                     "sess-1",
		State:                  StatePatient,
		Username:               "Aria",
		Role:                   RolePatient,
		BoundApplicationNumber: "AB12CD34",
		PendingDelete:          &PendingDelete{ApplicationNumber: "AB12CD34", ExpiresAt: time.Now()},
	}

	s.Clear()

	if s.ID != "sess-1" {
		t.Errorf("expected id to survive, got %q", s.ID)
	}
	if s.State != StateAnonymous || s.Username != "" || s.Role != "" || s.BoundApplicationNumber != "" || s.PendingDelete != nil {
		t.Errorf("expected anonymous session, got %+v", s)
	}
	if s.Authenticated() {
		t.Error("cleared session must not be authenticated")
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"Doctor": RoleDoctor, " patient ": RolePatient, "DOCTOR": RoleDoctor} {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Errorf("ParseRole(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseRole("ADMIN"); ok {
		t.Error("ADMIN must not parse")
	}
}
