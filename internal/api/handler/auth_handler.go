package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

const msgInvalidLogin = "Invalid email or password"

type AuthHandler struct {
	authService ports.AuthService
	cookieName  string
}

func NewAuthHandler(authService ports.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

// Register creates a new member account.
//
// @Summary      Register a new member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Member registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully.",
		User:    user,
	})
}

// Login verifies credentials and issues a session cookie, a bearer token or
// both depending on mode.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        mode  query     string        false  "session (default), token or both"
// @Param        body  body      loginRequest  true   "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Mode == "" {
		req.Mode = c.QueryParam("mode")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	mode, _ := domain.ParseLoginMode(req.Mode)

	res, err := h.login(c, req, mode)
	if err != nil {
		return err
	}

	resp := loginResponse{Message: "Login successful"}
	if res.Token != "" {
		resp.Token = res.Token
		resp.ExpiresAt = &res.TokenExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

// Token is the bearer-only login entry point.
//
// @Summary      Issue a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.login(c, req, domain.LoginModeToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: res.Token, ExpiresAt: res.TokenExpiresAt})
}

// login runs the authentication workflow and applies the per-mode status for
// rejected credentials: cookie clients get 400, token clients get 401.
func (h *AuthHandler) login(c echo.Context, req loginRequest, mode domain.LoginMode) (*ports.LoginResult, error) {
	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: req.identifier(),
		Password:   req.Password,
		Mode:       mode,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) && mode == domain.LoginModeSession {
			return nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidLogin)
		}
		return nil, err
	}

	if res.Cookie != nil {
		c.SetCookie(res.Cookie)
	}
	return res, nil
}

// Logout revokes the current session, if any, and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var value string
	if cookie, err := c.Cookie(h.cookieName); err == nil {
		value = cookie.Value
	}

	cookie, err := h.authService.Logout(c.Request().Context(), value)
	if err != nil {
		return err
	}

	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}
