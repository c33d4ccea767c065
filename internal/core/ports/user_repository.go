package ports

import (
	"context"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByIdentifier matches the email case-insensitively or the account
	// username exactly. Returns domain.ErrUserNotFound when neither matches.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create fails with domain.ErrUserExists when the email or the username
	// is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
