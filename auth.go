package kennel

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// AuthService implements credential issuance and verification: registration
// with password hashing, and login producing a signed token.
type AuthService struct {
	users  UserRepo
	tokens *TokenIssuer
}

func NewAuthService(users UserRepo, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user with RoleUser after validating the credentials.
// Username and password must be non-empty and the password length must be
// within [MinPasswordLength, MaxPasswordLength]. A taken username fails
// with ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, username, password string) (User, error) {
	return s.CreateUser(ctx, username, password, RoleUser)
}

// CreateUser is Register with an explicit role; the admin CLI uses it to
// create admin accounts.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	if username == "" || password == "" {
		return User{}, fmt.Errorf("create user: %w: username and password are required", ErrInvalidInput)
	}

	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return User{}, fmt.Errorf("create user: %w: password length must be between %d and %d characters",
			ErrInvalidInput, MinPasswordLength, MaxPasswordLength)
	}

	// Early exit only; the store's unique index on username is what
	// actually closes the check-then-insert race.
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return User{}, fmt.Errorf("create user %s: %w", username, ErrDuplicateUsername)
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	u, err := s.users.Create(ctx, User{Username: username, PasswordHash: hash, Role: role})
	if err != nil {
		return User{}, fmt.Errorf("create user %s: %w", username, err)
	}

	return u, nil
}

// Login verifies the credentials and issues a token for the user.
// An unknown username fails with ErrNotFound, a wrong password with
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if username == "" || password == "" {
		return "", fmt.Errorf("login: %w: username and password are required", ErrInvalidInput)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("login %s: %w", username, err)
	}

	if err := CheckPassword(u.PasswordHash, password); err != nil {
		return "", fmt.Errorf("login %s: %w", username, err)
	}

	token, err := s.tokens.Issue(Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		return "", fmt.Errorf("login %s: %w", username, err)
	}

	return token, nil
}
