package kennel

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// UserRepo persists user credentials. The store's unique index on username
// is the real enforcement point for uniqueness; Create must map a
// unique-constraint violation to ErrDuplicateUsername.
type UserRepo interface {
	// Create inserts a new user and returns it with its generated id
	// and creation timestamp filled in.
	Create(ctx context.Context, u User) (User, error)

	// GetByUsername returns ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (User, error)

	// GetByID returns ErrNotFound when no such user exists.
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// ImageRepo persists image metadata rows.
type ImageRepo interface {
	// Create inserts a new image row and returns it with its generated id
	// and timestamps filled in.
	Create(ctx context.Context, img Image) (Image, error)

	// Get returns ErrNotFound when the id does not exist.
	Get(ctx context.Context, id uuid.UUID) (Image, error)

	// GetByStoragePath returns ErrNotFound when no row references the path.
	GetByStoragePath(ctx context.Context, path string) (Image, error)

	// ListByOwner returns the owner's rows ordered by (created_at, id),
	// which is insertion order.
	ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]Image, error)

	// CountByOwner returns the owner's total row count.
	CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error)

	// Update overwrites name, storage path, content type and size.
	// Returns ErrNotFound when the id does not exist.
	Update(ctx context.Context, img Image) error

	// Delete removes the row. Returns ErrNotFound when the id does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileStorage defines the interface for physical file storage operations.
//
// All methods accept a context for cancellation and timeout control.
type FileStorage interface {
	// Get retrieves a file for reading. Returns ErrNotFound if the file
	// does not exist. The caller closes the returned ReadSeekCloser; the
	// seek capability supports range reads via http.ServeContent.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path, overwriting any existing file.
	// Implementations should write atomically (temp file then rename)
	// and report bytes written plus a content hash.
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes a file. Returns ErrNotFound if the file does not
	// exist; callers decide whether already-gone is tolerable.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all stored files. Used by the orphan
	// sweep, not by the request path.
	List(ctx context.Context) ([]string, error)
}
