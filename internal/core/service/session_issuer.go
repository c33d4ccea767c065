package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
	"github.com/newmedia/membership-api/internal/pkg/secret"
)

const (
	SessionCookieName = "userSession"
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// CookieOptions shapes every session cookie directive.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = SessionCookieName
	}
	if o.TTL <= 0 {
		o.TTL = DefaultSessionTTL
	}
	return o
}

func (o CookieOptions) issue(value string) *http.Cookie {
	return o.directive(value, int(o.TTL/time.Second))
}

// clear expires the cookie immediately on the client.
func (o CookieOptions) clear() *http.Cookie {
	return o.directive("", -1)
}

func (o CookieOptions) directive(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ── Server-tracked sessions ───────────────────────────────────────────────────

// ServerSessionIssuer keeps the session record in a SessionStore and hands
// the client only a signed opaque key.
type ServerSessionIssuer struct {
	store  ports.SessionStore
	signer *secret.Signer
	opts   CookieOptions
	clock  abtime.AbstractTime
	log    zerolog.Logger
}

func NewServerSessionIssuer(store ports.SessionStore, signer *secret.Signer, opts CookieOptions, clock abtime.AbstractTime, log zerolog.Logger) *ServerSessionIssuer {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &ServerSessionIssuer{store: store, signer: signer, opts: opts.withDefaults(), clock: clock, log: log}
}

func (i *ServerSessionIssuer) CookieName() string { return i.opts.Name }

func (i *ServerSessionIssuer) Issue(ctx context.Context, user *domain.User) (*http.Cookie, error) {
	now := i.clock.Now().UTC()
	session := &domain.Session{
		Key:       uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: now,
		ExpiresAt: now.Add(i.opts.TTL),
	}
	if err := i.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return i.opts.issue(i.signer.Sign(i.opts.Name, session.Key)), nil
}

// Resolve rejects forged keys before touching the store, then requires a
// live, unexpired record.
func (i *ServerSessionIssuer) Resolve(ctx context.Context, value string) (*domain.Identity, error) {
	key, err := i.signer.Unwrap(i.opts.Name, value)
	if err != nil {
		i.log.Debug().Str("reason", "signature").Msg("session cookie rejected")
		return nil, domain.ErrUnauthenticated
	}

	session, err := i.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			i.log.Debug().Str("reason", "unknown_session").Msg("session cookie rejected")
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Expired(i.clock.Now()) {
		i.log.Debug().Str("reason", "expired").Str("user_id", session.UserID).Msg("session cookie rejected")
		return nil, domain.ErrUnauthenticated
	}
	return session.Identity(), nil
}

func (i *ServerSessionIssuer) Revoke(ctx context.Context, value string) (*http.Cookie, error) {
	key, err := i.signer.Unwrap(i.opts.Name, value)
	if err != nil {
		return i.opts.clear(), nil
	}
	if err := i.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return i.opts.clear(), nil
}

// ── Self-contained cookie sessions ────────────────────────────────────────────

type sessionClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// SignedCookieIssuer embeds the identity in the cookie itself as an HS256
// token keyed by the session secret. Nothing is stored server-side, so
// Revoke can only clear the client copy; a captured cookie stays valid until
// it expires.
type SignedCookieIssuer struct {
	secret []byte
	opts   CookieOptions
	clock  abtime.AbstractTime
	log    zerolog.Logger
}

func NewSignedCookieIssuer(sessionSecret string, opts CookieOptions, clock abtime.AbstractTime, log zerolog.Logger) *SignedCookieIssuer {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &SignedCookieIssuer{secret: []byte(sessionSecret), opts: opts.withDefaults(), clock: clock, log: log}
}

func (i *SignedCookieIssuer) CookieName() string { return i.opts.Name }

func (i *SignedCookieIssuer) Issue(_ context.Context, user *domain.User) (*http.Cookie, error) {
	now := i.clock.Now()
	claims := sessionClaims{
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.opts.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session cookie: %w", err)
	}
	return i.opts.issue(signed), nil
}

func (i *SignedCookieIssuer) Resolve(_ context.Context, value string) (*domain.Identity, error) {
	var claims sessionClaims
	if err := parseHS256(value, &claims, i.secret, i.clock); err != nil {
		i.log.Debug().Str("reason", rejectionReason(err)).Msg("session cookie rejected")
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Source:    domain.CredentialSession,
	}, nil
}

func (i *SignedCookieIssuer) Revoke(context.Context, string) (*http.Cookie, error) {
	return i.opts.clear(), nil
}
