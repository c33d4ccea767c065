package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// DefaultTokenTTL bounds how long a bearer token outlives a logout.
const DefaultTokenTTL = time.Hour

// TokenClaims is the bearer token payload: {"user": {"id", "role"}} plus the
// registered exp/iat/sub claims.
type TokenClaims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

type TokenUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// JWTIssuer implements ports.TokenIssuer with HS256 tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  abtime.AbstractTime
	log    zerolog.Logger
}

func NewJWTIssuer(secret string, ttl time.Duration, clock abtime.AbstractTime, log zerolog.Logger) *JWTIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, clock: clock, log: log}
}

func (i *JWTIssuer) Issue(user *domain.User) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	claims := TokenClaims{
		User: TokenUser{ID: user.ID, Role: user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, structure and expiry. The caller only ever sees
// domain.ErrTokenInvalid; the concrete reason goes to the debug log.
func (i *JWTIssuer) Verify(token string) (*domain.Identity, error) {
	var claims TokenClaims
	if err := parseHS256(token, &claims, i.secret, i.clock); err != nil {
		i.log.Debug().Str("reason", rejectionReason(err)).Msg("bearer token rejected")
		return nil, domain.ErrTokenInvalid
	}
	if claims.User.ID == "" {
		i.log.Debug().Str("reason", "missing_subject").Msg("bearer token rejected")
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Identity{
		UserID: claims.User.ID,
		Role:   claims.User.Role,
		Source: domain.CredentialToken,
	}, nil
}

func parseHS256(token string, claims jwt.Claims, secret []byte, clock abtime.AbstractTime) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clock.Now),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "not_yet_valid"
	default:
		return "invalid"
	}
}
