package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/newmedia/membership-api/internal/core/domain"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails: any mismatch, including an empty hash, is false.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs and verifies stateless bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	// Verify returns domain.ErrTokenInvalid for every kind of rejection.
	Verify(token string) (*domain.Identity, error)
}

// SessionIssuer is a cookie-backed session strategy.
type SessionIssuer interface {
	Issue(ctx context.Context, user *domain.User) (*http.Cookie, error)
	// Resolve recovers the identity behind a cookie value or returns
	// domain.ErrUnauthenticated.
	Resolve(ctx context.Context, value string) (*domain.Identity, error)
	// Revoke invalidates the session behind value, if any, and returns the
	// directive that clears the client cookie.
	Revoke(ctx context.Context, value string) (*http.Cookie, error)
	CookieName() string
}
