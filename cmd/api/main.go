// @title          Membership API
// @version        1.0
// @description    Member registration, login and session-guarded access.
// @BasePath       /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        userSession
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/newmedia/membership-api/internal/api"
	"github.com/newmedia/membership-api/internal/core/ports"
	"github.com/newmedia/membership-api/internal/core/service"
	mongostore "github.com/newmedia/membership-api/internal/infrastructure/db/mongo"
	redisstore "github.com/newmedia/membership-api/internal/infrastructure/db/redis"
	"github.com/newmedia/membership-api/internal/infrastructure/http/handlers"
	"github.com/newmedia/membership-api/internal/infrastructure/queue"
	"github.com/newmedia/membership-api/internal/pkg/config"
	"github.com/newmedia/membership-api/internal/pkg/secret"
	"github.com/newmedia/membership-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "membership-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	handle := mongostore.NewHandle(mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	db, err := handle.Database(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := handle.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("mongo close")
		}
	}()

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	eventRepo := mongostore.NewEventRepository(db)
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	readiness := map[string]handlers.Pinger{"mongo": handle}

	// --- Security ---
	clock := abtime.NewRealTime()
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock, log)
	cookieOpts := service.CookieOptions{TTL: cfg.Session.TTL, Secure: cfg.IsProduction()}

	var sessions ports.SessionIssuer
	switch cfg.Session.Strategy {
	case config.StrategyCookie:
		sessions = service.NewSignedCookieIssuer(cfg.Session.Secret, cookieOpts, clock, log)
	default:
		store, closeStore, err := openSessionStore(ctx, cfg, db, readiness)
		if err != nil {
			return err
		}
		defer closeStore()

		signer, err := secret.NewSigner([]byte(cfg.Session.Secret))
		if err != nil {
			return err
		}
		sessions = service.NewServerSessionIssuer(store, signer, cookieOpts, clock, log)
	}
	log.Info().
		Str("strategy", cfg.Session.Strategy).
		Str("store", cfg.Session.Store).
		Msg("session strategy selected")

	// --- Audit trail ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, service.NewEventService(eventRepo, log), log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Services ---
	authService := service.NewAuthService(service.AuthDependencies{
		Users:    users,
		Hasher:   hasher,
		Sessions: sessions,
		Tokens:   tokens,
		Events:   dispatcher,
		Clock:    clock,
		Log:      log,
	})
	userService := service.NewUserService(users)

	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Users:        userService,
		Sessions:     sessions,
		Tokens:       tokens,
		Readiness:    readiness,
		Log:          log,
		FrontendURL:  cfg.FrontendURL,
		ExposeErrors: cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openSessionStore builds the store behind server-side sessions and registers
// it for readiness checks.
func openSessionStore(ctx context.Context, cfg *config.Config, db *mongo.Database, readiness map[string]handlers.Pinger) (ports.SessionStore, func(), error) {
	if cfg.Session.Store == config.StoreMongo {
		store := mongostore.NewSessionStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	readiness["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return redisstore.NewSessionStore(client), func() { _ = client.Close() }, nil
}
