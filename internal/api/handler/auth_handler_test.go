package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, sessionValue string) (*http.Cookie, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, sessionValue string) (*http.Cookie, error) {
	return s.logoutFn(ctx, sessionValue)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "a@x.com" || in.AccountUsername != "alice" || in.Password != "Secret1!" || in.Town != "Pune" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, AccountUsername: in.AccountUsername, PasswordHash: "$2a$10$hash", Role: domain.RoleUser}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	body := `{"firstName":"Alice","lastName":"Doe","email":"a@x.com","password":"Secret1!","accountUsername":"alice","town":"Pune"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("response leaks password hash: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "User registered successfully." {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "a@x.com" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/register", `{"email":"a@x.com"}`), httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "not json", body: "not-json", status: http.StatusBadRequest},
		{name: "malformed email", body: `{"email":"not-an-email"}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubAuthService{
				registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}
			handler := NewAuthHandler(stub, "userSession")
			c := e.NewContext(jsonRequest(http.MethodPost, "/api/register", tt.body), httptest.NewRecorder())

			err := handler.Register(c)
			var he *echo.HTTPError
			switch {
			case errors.As(err, &he):
				if he.Code != tt.status {
					t.Fatalf("expected %d, got %d", tt.status, he.Code)
				}
			case errors.Is(err, domain.ErrValidation):
			default:
				t.Fatalf("expected a 400-class error, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_TrimsBeforeEmailCheck(t *testing.T) {
	e := newTestEcho()
	var got ports.RegisterInput
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: "u1", Email: in.Email, AccountUsername: in.AccountUsername, Role: domain.RoleUser}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	body := `{"firstName":"Alice","lastName":"Doe","email":" a@x.com ","password":"Secret1!","accountUsername":" alice "}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Email != "a@x.com" || got.AccountUsername != "alice" {
		t.Fatalf("expected trimmed identifiers, got %+v", got)
	}
}

func TestAuthHandler_Login_SessionMode(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Identifier != "a@x.com" || in.Password != "Secret1!" || in.Mode != domain.LoginModeSession {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.LoginResult{
				User:   &domain.User{ID: "u1"},
				Cookie: &http.Cookie{Name: "userSession", Value: "k.sig", HttpOnly: true, MaxAge: 604800, Path: "/"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/login", `{"email":"a@x.com","password":"Secret1!"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	setCookie := rec.Header().Get(echo.HeaderSetCookie)
	if !strings.HasPrefix(setCookie, "userSession=k.sig") || !strings.Contains(setCookie, "Max-Age=604800") {
		t.Fatalf("unexpected Set-Cookie: %q", setCookie)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if _, ok := resp["token"]; ok {
		t.Fatalf("session mode must not return a token: %+v", resp)
	}
}

func TestAuthHandler_Login_ModeFromQuery(t *testing.T) {
	e := newTestEcho()
	expires := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Mode != domain.LoginModeBoth {
				t.Fatalf("expected both mode, got %q", in.Mode)
			}
			return &ports.LoginResult{
				User:           &domain.User{ID: "u1"},
				Cookie:         &http.Cookie{Name: "userSession", Value: "k.sig"},
				Token:          "token123",
				TokenExpiresAt: expires,
			}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/login?mode=both", `{"accountUsername":"alice","password":"Secret1!"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["expiresAt"] != "2026-03-01T13:00:00Z" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	if rec.Header().Get(echo.HeaderSetCookie) == "" {
		t.Fatalf("expected a session cookie")
	}
}

func TestAuthHandler_Login_InvalidMode(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/login", `{"email":"a@x.com","password":"x","mode":"magic"}`), httptest.NewRecorder())

	err := handler.Login(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Message, "mode must be one of") {
		t.Fatalf("expected mode validation error, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentialsStatusByMode(t *testing.T) {
	tests := []struct {
		target string
		status int
	}{
		{target: "/api/login", status: http.StatusBadRequest},
		{target: "/api/login?mode=token", status: http.StatusUnauthorized},
		{target: "/api/login?mode=both", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
					return nil, domain.ErrInvalidCredentials
				},
			}
			handler := NewAuthHandler(stub, "userSession")
			c := e.NewContext(jsonRequest(http.MethodPost, tt.target, `{"email":"a@x.com","password":"bad"}`), httptest.NewRecorder())

			err := handler.Login(c)
			var he *echo.HTTPError
			switch {
			case errors.As(err, &he):
				if he.Code != tt.status || he.Message != msgInvalidLogin {
					t.Fatalf("expected %d %q, got %d %v", tt.status, msgInvalidLogin, he.Code, he.Message)
				}
			case errors.Is(err, domain.ErrInvalidCredentials):
				if tt.status != http.StatusUnauthorized {
					t.Fatalf("expected %d, got ErrInvalidCredentials (401)", tt.status)
				}
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthHandler_Token(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Mode != domain.LoginModeToken {
				t.Fatalf("expected token mode, got %q", in.Mode)
			}
			return &ports.LoginResult{User: &domain.User{ID: "u1"}, Token: "token123", TokenExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/token", `{"email":"a@x.com","password":"Secret1!"}`), rec)

	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("token path must not set a cookie")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var got string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, sessionValue string) (*http.Cookie, error) {
			got = sessionValue
			return &http.Cookie{Name: "userSession", Value: "", Path: "/", MaxAge: -1}, nil
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "userSession", Value: "k.sig"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "k.sig" {
		t.Fatalf("expected cookie value passed to service, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if setCookie := rec.Header().Get(echo.HeaderSetCookie); !strings.Contains(setCookie, "Max-Age=0") {
		t.Fatalf("expected clearing cookie, got %q", setCookie)
	}
}

func TestAuthHandler_Logout_StoreFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, sessionValue string) (*http.Cookie, error) {
			return nil, domain.ErrStoreUnavailable
		},
	}
	handler := NewAuthHandler(stub, "userSession")

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/logout", nil), rec)

	if err := handler.Logout(c); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("no cookie directive expected on failure")
	}
}
