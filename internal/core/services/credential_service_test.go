package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/test/mocks"
)

func TestCredentialService_Register(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		role      domain.Role
		setupMock func(*mocks.MockRepository)
		wantErr   error
		wantValid bool
	}{
		{name: "doctor_registered", username: "drA", password: "pw1", role: domain.RoleDoctor},
		{name: "patient_registered", username: "Aria", password: "pw2", role: domain.RolePatient},
		{name: "blank_username", username: " ", password: "pw1", role: domain.RoleDoctor, wantValid: true},
		{name: "blank_password", username: "drA", password: "", role: domain.RoleDoctor, wantValid: true},
		{name: "unknown_role", username: "drA", password: "pw1", role: "ADMIN", wantValid: true},
		{name: "username_at_limit", username: strings.Repeat("u", 100), password: "pw1", role: domain.RoleDoctor},
		{name: "username_too_long", username: strings.Repeat("u", 101), password: "pw1", role: domain.RoleDoctor, wantValid: true},
		{name: "multibyte_username_at_limit", username: strings.Repeat("é", 100), password: "pw1", role: domain.RoleDoctor},
		{name: "password_at_limit", username: "drA", password: strings.Repeat("p", 72), role: domain.RoleDoctor},
		{name: "password_too_long", username: "drA", password: strings.Repeat("p", 73), role: domain.RoleDoctor, wantValid: true},
		{name: "multibyte_password_too_long", username: "drA", password: strings.Repeat("é", 37), role: domain.RoleDoctor, wantValid: true},
		{
			name:     "duplicate_username",
			username: "drA", password: "pw1", role: domain.RoleDoctor,
			setupMock: func(m *mocks.MockRepository) {
				m.CreateAccountError = domain.ErrDuplicateUsername
			},
			wantErr: domain.ErrDuplicateUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository()
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			service := NewCredentialService(repo, bcrypt.MinCost)

			err := service.Register(context.Background(), tt.username, tt.password, tt.role)

			switch {
			case tt.wantValid:
				if !domain.IsValidation(err) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if len(repo.CreateAccountCalls) != 0 {
					t.Error("nothing should be stored on invalid input")
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestCredentialService_NeverStoresPlaintext(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := NewCredentialService(repo, bcrypt.MinCost)

	if err := service.Register(context.Background(), "drA", "pw1", domain.RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.CreateAccountCalls[0]
	if stored.PasswordHash == "pw1" || strings.Contains(stored.PasswordHash, "pw1") {
		t.Errorf("password stored in plaintext: %q", stored.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")) != nil {
		t.Error("stored hash does not match the password")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCredentialService_StoresCanonicalRole(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := NewCredentialService(repo, bcrypt.MinCost)

	if err := service.Register(context.Background(), "drA", "pw1", " doctor "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.CreateAccountCalls[0].Role; got != domain.RoleDoctor {
		t.Errorf("expected role %s to be stored, got %q", domain.RoleDoctor, got)
	}
	if _, err := service.Verify(context.Background(), "drA", "pw1", domain.RoleDoctor); err != nil {
		t.Errorf("expected the account to log in as a doctor, got %v", err)
	}
}

func TestCredentialService_SecondRegistrationRejected(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := NewCredentialService(repo, bcrypt.MinCost)
	ctx := context.Background()

	if err := service.Register(ctx, "drA", "pw1", domain.RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := service.Register(ctx, "drA", "other", domain.RolePatient)
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

// The right password with the wrong role fails like a wrong password.
func TestCredentialService_Verify(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := NewCredentialService(repo, bcrypt.MinCost)
	ctx := context.Background()

	if err := service.Register(ctx, "drA", "pw1", domain.RoleDoctor); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		role     domain.Role
		wantOK   bool
	}{
		{"correct_credentials", "drA", "pw1", domain.RoleDoctor, true},
		{"wrong_role", "drA", "pw1", domain.RolePatient, false},
		{"wrong_password", "drA", "pw2", domain.RoleDoctor, false},
		{"unknown_user", "drB", "pw1", domain.RoleDoctor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := service.Verify(ctx, tt.username, tt.password, tt.role)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if account.Username != "drA" || account.Role != domain.RoleDoctor {
					t.Errorf("unexpected account %+v", account)
				}
				return
			}
			if err != domain.ErrAccessDenied {
				t.Errorf("expected the generic ErrAccessDenied, got %v", err)
			}
		})
	}
}

func TestCredentialService_VerifyPropagatesStoreFailure(t *testing.T) {
	repo := mocks.NewMockRepository()
	repo.FindAccountError = context.DeadlineExceeded
	service := NewCredentialService(repo, bcrypt.MinCost)

	_, err := service.Verify(context.Background(), "drA", "pw1", domain.RoleDoctor)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestCredentialService_ConcurrentRegistrations(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := NewCredentialService(repo, bcrypt.MinCost)

	const numGoroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if service.Register(context.Background(), "drA", "pw1", domain.RoleDoctor) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one registration to win, got %d", succeeded)
	}
}
