package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrUserNotFound is returned when the token subject has no account
	ErrUserNotFound = errors.New("user not found")

	// ErrUserBanned is returned when the account behind the token is banned
	ErrUserBanned = errors.New("user is banned")
)

// Claims are the claims the authentication service puts in its tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// subject returns the user id, preferring the id claim over sub
func (c *Claims) subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// UserLookup loads accounts by id. repositories.UserRepository satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Config holds configuration for JWTValidator
type Config struct {
	Secret string
	// Issuer is checked when non-empty
	Issuer string
	// Leeway tolerates clock skew on exp/nbf/iat
	Leeway time.Duration
}

// JWTValidator verifies HS256 tokens signed by the authentication service and
// turns them into principals. With a UserLookup the role and ban state come from
// the users table; without one the role claim is trusted.
type JWTValidator struct {
	secret []byte
	parser *jwt.Parser
	users  UserLookup
	logger *zap.Logger
}

var _ middleware.TokenValidator = (*JWTValidator)(nil)

// NewJWTValidator creates a new validator. users may be nil.
func NewJWTValidator(cfg Config, users UserLookup, logger *zap.Logger) *JWTValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWTValidator{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
		users:  users,
		logger: logger,
	}
}

// ValidateToken validates a token and returns the principal it identifies
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*middleware.Principal, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: %v", ErrInvalidIssuer, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject := claims.subject()
	if subject == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}

	if v.users == nil {
		return &middleware.Principal{
			UserID: subject,
			Email:  claims.Email,
			Role:   rbac.ParseRole(claims.Role),
		}, nil
	}

	return v.lookup(ctx, subject)
}

// lookup resolves the principal from the users table
func (v *JWTValidator) lookup(ctx context.Context, subject string) (*middleware.Principal, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: id claim is not a UUID", ErrInvalidToken)
	}

	user, err := v.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsBanned {
		v.logger.Info("rejected token of banned user", zap.String("user_id", subject))
		return nil, ErrUserBanned
	}

	return &middleware.Principal{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.EffectiveRole(),
	}, nil
}
