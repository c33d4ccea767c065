package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/newmedia/membership-api/docs"
	"github.com/newmedia/membership-api/internal/api/handler"
	"github.com/newmedia/membership-api/internal/api/middleware"
	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
	"github.com/newmedia/membership-api/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs, built once in main.
type Dependencies struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Sessions ports.SessionIssuer
	Tokens   ports.TokenIssuer

	// Readiness lists the stores the running configuration uses.
	Readiness map[string]handlers.Pinger

	Log          zerolog.Logger
	FrontendURL  string
	ExposeErrors bool

	// Registry receives the HTTP metrics. Nil means the process-wide default.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.ExposeErrors)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions.CookieName())
	userHandler := handler.NewUserHandler(deps.Users)
	requireAuth := middleware.Auth(deps.Sessions, deps.Tokens)

	// --- Public routes ---
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "API is running...")
	})

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes ---
	// Auth is attached per route: a group-level middleware would also guard
	// the group's not-found fallback and turn unknown paths into 401s.
	g := e.Group("/api")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/token", authHandler.Token)
	g.POST("/logout", authHandler.Logout)

	g.GET("/profile", userHandler.Profile, requireAuth)
	g.GET("/protected", userHandler.Protected, requireAuth)
	g.GET("/users", userHandler.List, requireAuth, middleware.RBAC(domain.RoleAdmin))

	return e
}
