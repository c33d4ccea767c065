package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/api/middleware"
	"github.com/newmedia/membership-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. A
// missing identity means the route was mounted without the middleware.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, _ := c.Get(middleware.IdentityKey).(*domain.Identity)
	if id == nil || id.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
