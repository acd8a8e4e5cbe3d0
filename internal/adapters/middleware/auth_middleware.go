package middleware

import (
	"context"
	"crypto/rsa"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

// SessionResumer loads the live session a token refers to.
type SessionResumer interface {
	Resume(ctx context.Context, sessionID string) (*domain.Session, error)
}

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	sessions  SessionResumer
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, sessions SessionResumer) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
		sessions:  sessions,
	}
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session stored by RequireRole.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

// RequireRole admits requests whose bearer token names a live session with
// one of roles.
func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		})
		if err != nil || !token.Valid {
			log.Printf("Token rejected: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		sessionID, ok := claims["sid"].(string)
		if !ok || sessionID == "" {
			log.Printf("Missing or invalid 'sid' claim: %v", claims["sid"])
			http.Error(w, "invalid token: missing session", http.StatusUnauthorized)
			return
		}

		session, err := m.sessions.Resume(r.Context(), sessionID)
		if err != nil {
			log.Printf("Session %s not resumable: %v", sessionID, err)
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		if claimRole, _ := claims["role"].(string); claimRole != string(session.Role) {
			log.Printf("Role mismatch between token (%s) and session (%s)", claimRole, session.Role)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if !slices.Contains(roles, session.Role) {
			log.Printf("Role mismatch: required one of %v, got %s", roles, session.Role)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next(w, r.WithContext(WithSession(r.Context(), session)))
	}
}
