package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"

	"github.com/newmedia/membership-api/internal/api/metrics"
	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
	"github.com/newmedia/membership-api/internal/pkg/identifier"
)

const (
	msgMissingRegistrationFields = "Please fill in all required fields."
	msgMissingLoginFields        = "Please provide both email and password"
	msgInvalidLoginMode          = "mode must be one of: session token both"
	msgUsernameHasAt             = "Account username cannot contain @."
)

// AuthDependencies wires the collaborators of AuthService. Events and Clock
// are optional.
type AuthDependencies struct {
	Users    ports.UserRepository
	Hasher   ports.PasswordHasher
	Sessions ports.SessionIssuer
	Tokens   ports.TokenIssuer
	Events   ports.EventRecorder
	Clock    abtime.AbstractTime
	Log      zerolog.Logger
}

// AuthService implements the register, login and logout workflows on top of
// one credential check shared by both session strategies.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	sessions ports.SessionIssuer
	tokens   ports.TokenIssuer
	events   ports.EventRecorder
	clock    abtime.AbstractTime
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:    deps.Users,
		hasher:   deps.Hasher,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		events:   deps.Events,
		clock:    deps.Clock,
		log:      deps.Log,
	}
	if s.events == nil {
		s.events = discardEvents{}
	}
	if s.clock == nil {
		s.clock = abtime.NewRealTime()
	}
	return s
}

// Register checks the required fields, refuses taken identifiers, hashes the
// password and stores the new member with the user role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in = trimRegistration(in)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.AccountUsername == "" {
		s.rejectRegistration(in, "invalid_input")
		return nil, domain.NewValidationError(msgMissingRegistrationFields)
	}
	// Emails always carry an @, so usernames without one can never be
	// mistaken for another member's email at login.
	if strings.Contains(in.AccountUsername, "@") {
		s.rejectRegistration(in, "invalid_input")
		return nil, domain.NewValidationError(msgUsernameHasAt)
	}

	// Unique-check before paying for the hash; the store's unique indexes
	// still decide races.
	if err := s.ensureAvailable(ctx, in.Email, in.AccountUsername); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.rejectRegistration(in, "conflict")
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.rejectRegistration(in, "invalid_input")
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.clock.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		AccountUsername:  in.AccountUsername,
		PasswordHash:     hash,
		Role:             domain.RoleUser,
		StreetAddress:    in.StreetAddress,
		Town:             in.Town,
		State:            in.State,
		Pincode:          in.Pincode,
		Phone:            in.Phone,
		NomineeName:      in.NomineeName,
		SponsorID:        in.SponsorID,
		VigilanceOfficer: in.VigilanceOfficer,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.rejectRegistration(in, "conflict")
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.record(domain.EventRegistered, created.Email, created.ID, "")
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return created, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	for _, id := range []string{email, username} {
		_, err := s.users.FindByIdentifier(ctx, id)
		switch {
		case err == nil:
			return domain.ErrUserExists
		case errors.Is(err, domain.ErrUserNotFound):
		default:
			return fmt.Errorf("register: %w", err)
		}
	}
	return nil
}

func (s *AuthService) rejectRegistration(in ports.RegisterInput, result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	s.record(domain.EventRegisterRejected, in.Email, "", "")
}

// Login looks the member up, checks the password and then issues a cookie, a
// token or both according to in.Mode.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	mode, ok := domain.ParseLoginMode(string(in.Mode))
	if !ok {
		metrics.LoginsTotal.WithLabelValues("unknown", "invalid_input").Inc()
		return nil, domain.NewValidationError(msgInvalidLoginMode)
	}
	subject := strings.TrimSpace(in.Identifier)

	if subject == "" || in.Password == "" {
		metrics.LoginsTotal.WithLabelValues(string(mode), "invalid_input").Inc()
		return nil, domain.NewValidationError(msgMissingLoginFields)
	}

	user, err := s.verifyCredentials(ctx, subject, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(string(mode), "invalid_credentials").Inc()
			s.record(domain.EventLoginFailed, subject, "", mode)
		} else {
			metrics.LoginsTotal.WithLabelValues(string(mode), "error").Inc()
		}
		return nil, err
	}

	res := &ports.LoginResult{User: user}
	if mode.IssuesSession() {
		if res.Cookie, err = s.sessions.Issue(ctx, user); err != nil {
			metrics.LoginsTotal.WithLabelValues(string(mode), "error").Inc()
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	if mode.IssuesToken() {
		if res.Token, res.TokenExpiresAt, err = s.tokens.Issue(user); err != nil {
			metrics.LoginsTotal.WithLabelValues(string(mode), "error").Inc()
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	metrics.LoginsTotal.WithLabelValues(string(mode), "success").Inc()
	s.record(domain.EventLoginSucceeded, subject, user.ID, mode)

	return res, nil
}

// verifyCredentials is the single credential check behind every login mode.
// Unknown identifiers still pay for one bcrypt comparison so response time
// does not reveal whether an account exists.
func (s *AuthService) verifyCredentials(ctx context.Context, identifier, password string) (*domain.User, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Logout revokes the session behind sessionValue, if any, and returns the
// directive clearing the cookie. Bearer tokens are unaffected and stay valid
// until they expire.
func (s *AuthService) Logout(ctx context.Context, sessionValue string) (*http.Cookie, error) {
	var userID string
	if sessionValue != "" {
		if id, err := s.sessions.Resolve(ctx, sessionValue); err == nil {
			userID = id.UserID
		}
	}

	cookie, err := s.sessions.Revoke(ctx, sessionValue)
	if err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}

	metrics.LogoutsTotal.Inc()
	if userID != "" {
		s.record(domain.EventLogout, userID, userID, domain.LoginModeSession)
	}
	return cookie, nil
}

func (s *AuthService) record(typ domain.AuthEventType, subject, userID string, mode domain.LoginMode) {
	s.events.Record(domain.AuthEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Subject:    subject,
		UserID:     userID,
		Mode:       mode,
		OccurredAt: s.clock.Now().UTC(),
	})
}

func trimRegistration(in ports.RegisterInput) ports.RegisterInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.AccountUsername = identifier.Username(in.AccountUsername)
	return in
}

type discardEvents struct{}

func (discardEvents) Record(domain.AuthEvent) {}
