package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// RegisterInput is the new-account submission.
type RegisterInput struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	AccountUsername  string
	StreetAddress    string
	Town             string
	State            string
	Pincode          string
	Phone            string
	NomineeName      string
	SponsorID        string
	VigilanceOfficer string
}

type LoginInput struct {
	Identifier string
	Password   string
	Mode       domain.LoginMode
}

// LoginResult holds whatever the selected mode issued. Cookie is nil for
// token-only logins and Token is empty for session-only logins.
type LoginResult struct {
	User           *domain.User
	Cookie         *http.Cookie
	Token          string
	TokenExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, sessionValue string) (*http.Cookie, error)
}

type UserService interface {
	Profile(ctx context.Context, id *domain.Identity) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
