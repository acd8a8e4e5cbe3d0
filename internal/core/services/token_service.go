package services

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

// TokenService signs the bearer tokens handed out at login. A token only
// names a session; the session itself lives in the session store, so logout
// invalidates the token even before it expires.
type TokenService struct {
	privateKey *rsa.PrivateKey
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenService(privateKey *rsa.PrivateKey, ttl time.Duration) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *TokenService) Issue(session *domain.Session) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  session.Username,
		"sid":  session.ID,
		"role": string(session.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}
