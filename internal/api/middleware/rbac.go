package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// RBAC admits only identities holding one of allowedRoles. It must run after
// Auth; a request without an identity is refused the same way.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(IdentityKey).(*domain.Identity)
			if id == nil {
				return domain.ErrForbidden
			}
			if _, ok := allowed[id.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
