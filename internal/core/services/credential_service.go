package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type CredentialService struct {
	accounts ports.AccountRepository
	cost     int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

var _ ports.CredentialService = (*CredentialService)(nil)

// NewCredentialService hashes passwords with the given bcrypt cost.
func NewCredentialService(accounts ports.AccountRepository, cost int) *CredentialService {
	return &CredentialService{
		accounts: accounts,
		cost:     cost,
		now:      time.Now,
	}
}

func (s *CredentialService) Register(ctx context.Context, username, password string, role domain.Role) error {
	username = strings.TrimSpace(username)

	v := &domain.ValidationError{}
	switch {
	case username == "":
		v.Fields = append(v.Fields, domain.FieldError{Field: "username", Message: "is required"})
	case utf8.RuneCountInString(username) > domain.MaxUsernameLength:
		v.Fields = append(v.Fields, domain.FieldError{Field: "username", Message: "must be at most 100 characters"})
	}
	switch {
	case password == "":
		v.Fields = append(v.Fields, domain.FieldError{Field: "password", Message: "is required"})
	case len(password) > domain.MaxPasswordBytes:
		v.Fields = append(v.Fields, domain.FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	parsed, ok := domain.ParseRole(string(role))
	if !ok {
		v.Fields = append(v.Fields, domain.FieldError{Field: "role", Message: "must be DOCTOR or PATIENT"})
	}
	if len(v.Fields) > 0 {
		return v
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	return s.accounts.CreateAccount(ctx, domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         parsed,
		CreatedAt:    s.now().UTC(),
	})
}

// Verify returns domain.ErrAccessDenied for an unknown user, a wrong password
// and a wrong role alike.
func (s *CredentialService) Verify(ctx context.Context, username, password string, claimedRole domain.Role) (*domain.Account, error) {
	account, err := s.accounts.FindAccount(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrAccessDenied
	}
	if account.Role != claimedRole {
		return nil, domain.ErrAccessDenied
	}
	return account, nil
}

func (s *CredentialService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}
