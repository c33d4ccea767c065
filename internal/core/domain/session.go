package domain

import (
	"context"
	"time"
)

// LoginMode selects which session strategy the authentication workflow issues.
type LoginMode string

const (
	LoginModeSession LoginMode = "session"
	LoginModeToken   LoginMode = "token"
	LoginModeBoth    LoginMode = "both"
)

// ParseLoginMode maps client input to a LoginMode. Empty input selects the
// cookie session path.
func ParseLoginMode(s string) (LoginMode, bool) {
	switch LoginMode(s) {
	case "", LoginModeSession:
		return LoginModeSession, true
	case LoginModeToken:
		return LoginModeToken, true
	case LoginModeBoth:
		return LoginModeBoth, true
	default:
		return "", false
	}
}

// IssuesSession reports whether the mode yields a session cookie.
func (m LoginMode) IssuesSession() bool {
	return m == LoginModeSession || m == LoginModeBoth
}

// IssuesToken reports whether the mode yields a bearer token.
func (m LoginMode) IssuesToken() bool {
	return m == LoginModeToken || m == LoginModeBoth
}

// Session is the server-held record behind an opaque session cookie.
type Session struct {
	Key       string    `json:"key"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its absolute expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity returns the identity the session proves.
func (s *Session) Identity() *Identity {
	return &Identity{
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Source:    CredentialSession,
	}
}

// CredentialSource names where a request's identity was recovered from.
type CredentialSource string

const (
	CredentialSession CredentialSource = "session"
	CredentialToken   CredentialSource = "token"
)

// Identity is what the access-control middleware attaches to a request.
// Email and name fields are empty when recovered from a bearer token.
type Identity struct {
	UserID    string           `json:"id"`
	Email     string           `json:"email,omitempty"`
	Role      string           `json:"role"`
	FirstName string           `json:"firstName,omitempty"`
	LastName  string           `json:"lastName,omitempty"`
	Source    CredentialSource `json:"-"`
}

type identityKey struct{}

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
