package kennel

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// User roles. Every registered user gets RoleUser; RoleAdmin is only
// assignable through the admin CLI.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated subject derived from a verified token.
// It lives for one request and is never persisted.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type Image struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"image_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewImage carries the caller-supplied parts of an upload.
type NewImage struct {
	Name        string
	ContentType string
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListQuery struct {
	Page  int
	Limit int
}

// normalize applies the documented defaults: page 1 and limit 10 when a
// value is absent or out of range, with limit capped at MaxPageSize.
func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

type ListResult struct {
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
	Items []Image `json:"data"`
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Users  string `mapstructure:"users"`
	Images string `mapstructure:"images"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Users == "" {
		return errors.New("validate tables: users table name cannot be empty")
	}
	if t.Images == "" {
		return errors.New("validate tables: images table name cannot be empty")
	}

	for _, name := range []string{t.Users, t.Images} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	return nil
}
