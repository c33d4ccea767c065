package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

// UserHandler serves the routes behind the access-control middleware.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile returns the caller's own record.
//
// @Summary      Current member profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     SessionCookie
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Message: "Profile",
		Email:   user.Email,
		User:    user,
	})
}

// Protected echoes the identity the middleware recovered.
//
// @Summary      Authentication check
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     SessionCookie
// @Success      200  {object}  protectedResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/protected [get]
func (h *UserHandler) Protected(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, protectedResponse{
		Message: "You are authenticated",
		User:    protectedUser{ID: id.UserID, Role: id.Role},
	})
}

// List returns every member without password hashes. Admin only.
//
// @Summary      List members
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     SessionCookie
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}
