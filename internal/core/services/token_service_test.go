package services

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

func TestTokenService_Issue(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	service := NewTokenService(key, time.Hour)

	session := domain.NewSession("sess-1")
	session.State = domain.StateDoctor
	session.Username = "drA"
	session.Role = domain.RoleDoctor

	signed, err := service.Issue(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["sid"] != "sess-1" || claims["sub"] != "drA" || claims["role"] != "DOCTOR" {
		t.Errorf("unexpected claims %v", claims)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp.Sub(time.Now()) > time.Hour {
		t.Errorf("unexpected expiry %v (%v)", exp, err)
	}
}
