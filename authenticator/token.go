package authenticator

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/blogem/expenseflow/models"
)

// DefaultTokenTTL is how long an issued access token stays valid
const DefaultTokenTTL = 24 * time.Hour

const issuer = "expenseflow"

// TokenClaims are the claims carried by an access token. The role is not
// included: it is read from the store on every request.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user ID
func (c *TokenClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenIssuer creates and validates HS256 access tokens
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user
func (s *TokenIssuer) Issue(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims. Every failure wraps
// models.ErrUnauthorized.
func (s *TokenIssuer) Validate(tokenString string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token has expired: %w", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", models.ErrUnauthorized)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", models.ErrUnauthorized)
	}

	return claims, nil
}
