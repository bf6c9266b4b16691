package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/kennelhq/kennel"
)

// TokenVerifier verifies a bearer token and returns the identity it binds.
type TokenVerifier interface {
	Verify(token string) (kennel.Identity, error)
}

// identityKey is the context key for the authenticated identity.
type identityKey struct{}

// WithIdentity returns a new context carrying the identity.
func WithIdentity(ctx context.Context, ident kennel.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// IdentityFromContext retrieves the authenticated identity from context.
// Returns an error if no identity is present.
func IdentityFromContext(ctx context.Context) (kennel.Identity, error) {
	ident, ok := ctx.Value(identityKey{}).(kennel.Identity)
	if !ok {
		return kennel.Identity{}, errors.New("identity not found in context")
	}
	return ident, nil
}

// Auth creates middleware that enforces bearer-token authentication on
// every route it wraps. A missing or malformed Authorization header is
// 401; a header in the right shape carrying a token that fails
// verification is 403. On success the identity lands in the request
// context and the downstream handler runs.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			scheme, token, ok := strings.Cut(header, " ")
			if header == "" || !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "Please log in first.")
				return
			}

			ident, err := verifier.Verify(token)
			if err != nil {
				WriteError(w, http.StatusForbidden, "invalid_token", "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RateLimitConfig holds token-bucket settings for the auth endpoints.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"min=0"`
	Burst   int     `mapstructure:"burst" validate:"min=0"`
}

// RateLimit creates middleware applying a process-wide token bucket.
// Requests over the limit fail with 429.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
