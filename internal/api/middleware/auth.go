package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/api/metrics"
	"github.com/newmedia/membership-api/internal/core/domain"
)

// IdentityKey is the echo context key Auth stores the *domain.Identity under.
const IdentityKey = "identity"

// SessionResolver recovers an identity from a session cookie value.
type SessionResolver interface {
	Resolve(ctx context.Context, value string) (*domain.Identity, error)
	CookieName() string
}

// TokenVerifier recovers an identity from a bearer token.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

// Auth admits a request carrying either a bearer token or a session cookie.
// The Authorization header wins when both are present. Requests with neither
// are rejected before any store is consulted.
func Auth(sessions SessionResolver, tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var (
				id     *domain.Identity
				err    error
				source string
			)
			if header := req.Header.Get(echo.HeaderAuthorization); header != "" {
				source = string(domain.CredentialToken)
				id, err = tokens.Verify(bearerToken(header))
			} else if cookie, cerr := c.Cookie(sessions.CookieName()); cerr == nil && cookie.Value != "" {
				source = string(domain.CredentialSession)
				id, err = sessions.Resolve(req.Context(), cookie.Value)
			} else {
				metrics.CredentialChecksTotal.WithLabelValues("none", "rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "No credentials, authorization denied")
			}

			if err != nil {
				metrics.CredentialChecksTotal.WithLabelValues(source, "rejected").Inc()
				return err
			}
			metrics.CredentialChecksTotal.WithLabelValues(source, "accepted").Inc()

			c.Set(IdentityKey, id)
			c.SetRequest(req.WithContext(domain.ContextWithIdentity(req.Context(), id)))

			return next(c)
		}
	}
}

// bearerToken strips a leading "Bearer " if present; a bare token is
// accepted as is.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return header
}
