package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

type SessionStore interface {
	SaveSession(ctx context.Context, session *domain.Session, ttl time.Duration) error
	// UpdateSession overwrites a stored session and keeps its expiry. It never
	// recreates one; a session that was logged out or expired returns
	// domain.ErrAccessDenied.
	UpdateSession(ctx context.Context, session *domain.Session) error
	// LoadSession returns domain.ErrNotFound for unknown or expired sessions.
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}
