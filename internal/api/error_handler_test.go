package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/newmedia/membership-api/internal/core/domain"
)

func renderError(t *testing.T, err error, expose bool) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/x", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop(), expose)(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec, resp
}

func TestHTTPErrorHandler_Taxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", domain.NewValidationError("Please fill in all required fields."), http.StatusBadRequest, "Please fill in all required fields."},
		{"conflict", fmt.Errorf("register: %w", domain.ErrUserExists), http.StatusBadRequest, "User with this email or username already exists."},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"bad token", domain.ErrTokenInvalid, http.StatusUnauthorized, "Token is not valid"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"store down", fmt.Errorf("find user: %w: %w", domain.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusInternalServerError, "Server error"},
		{"not found", echo.ErrNotFound, http.StatusNotFound, "API route not found."},
		{"method", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := renderError(t, tt.err, false)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if resp.Message != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, resp.Message)
			}
			if resp.Error != "" {
				t.Fatalf("detail must be hidden, got %q", resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_DetailOnlyInDevelopment(t *testing.T) {
	_, resp := renderError(t, errors.New("boom"), true)
	if resp.Error != "boom" {
		t.Fatalf("expected detail in development, got %q", resp.Error)
	}

	_, resp = renderError(t, fmt.Errorf("x: %w", domain.ErrStoreUnavailable), true)
	if resp.Error != "" {
		t.Fatalf("store errors never expose detail, got %q", resp.Error)
	}
}
