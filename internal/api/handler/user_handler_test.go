package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/api/middleware"
	"github.com/newmedia/membership-api/internal/core/domain"
)

type stubUserService struct {
	profileFn func(ctx context.Context, id *domain.Identity) (*domain.User, error)
	listFn    func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubUserService) Profile(ctx context.Context, id *domain.Identity) (*domain.User, error) {
	return s.profileFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func TestUserHandler_Profile(t *testing.T) {
	e := echo.New()
	stub := &stubUserService{
		profileFn: func(ctx context.Context, id *domain.Identity) (*domain.User, error) {
			return &domain.User{ID: id.UserID, Email: "a@x.com", PasswordHash: "secret-hash", Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/profile", nil), rec)
	c.Set(middleware.IdentityKey, &domain.Identity{UserID: "u1", Role: domain.RoleUser})

	if err := handler.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("response leaks password hash")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Profile" || resp["email"] != "a@x.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Profile_MissingIdentity(t *testing.T) {
	e := echo.New()
	stub := &stubUserService{
		profileFn: func(ctx context.Context, id *domain.Identity) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/profile", nil), httptest.NewRecorder())

	err := handler.Profile(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_Protected(t *testing.T) {
	e := echo.New()
	handler := NewUserHandler(&stubUserService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/protected", nil), rec)
	c.Set(middleware.IdentityKey, &domain.Identity{UserID: "u1", Role: domain.RoleAdmin, Email: "a@x.com"})

	if err := handler.Protected(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "You are authenticated" || resp.User["id"] != "u1" || resp.User["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(resp.User) != 2 {
		t.Fatalf("expected only id and role, got %+v", resp.User)
	}
}

func TestUserHandler_List(t *testing.T) {
	tests := []struct {
		name  string
		users []*domain.User
		want  string
	}{
		{name: "empty", users: nil, want: "[]"},
		{name: "one", users: []*domain.User{{ID: "u1", Email: "a@x.com", PasswordHash: "h"}}, want: `"email":"a@x.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			handler := NewUserHandler(&stubUserService{
				listFn: func(ctx context.Context) ([]*domain.User, error) { return tt.users, nil },
			})

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/users", nil), rec)

			if err := handler.List(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Fatalf("expected %s in %s", tt.want, body)
			}
			if strings.Contains(body, "passwordHash") {
				t.Fatalf("response leaks password hash: %s", body)
			}
		})
	}
}
