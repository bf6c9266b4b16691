package kennel

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL bounds token lifetime when no TTL is configured.
// Tokens are deliberately not valid indefinitely.
const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer issues and verifies signed identity assertions (HS256 JWTs).
// The signing secret is read once at startup and never mutated.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("new token issuer: secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue produces a signed token binding the identity's user id and role,
// valid from now until now+ttl.
func (t *TokenIssuer) Issue(ident Identity) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// identity. Every failure mode collapses into ErrInvalidToken so callers
// cannot distinguish tampering from expiry from garbage input.
func (t *TokenIssuer) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: subject, Role: claims.Role}, nil
}
