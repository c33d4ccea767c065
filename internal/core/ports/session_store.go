package ports

import (
	"context"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// SessionStore persists server-side session records. Implementations expire
// records natively once ExpiresAt has passed.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired keys.
	Get(ctx context.Context, key string) (*domain.Session, error)
	Delete(ctx context.Context, key string) error
}
