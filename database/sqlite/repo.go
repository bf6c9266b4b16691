// Package sqlite implements the kennel repo interfaces using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kennelhq/kennel"
)

// isUniqueViolation reports whether the error is a SQLite unique
// constraint failure. The modernc driver only surfaces the constraint
// through the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type UserRepo struct {
	db        *sql.DB
	tableName string
}

func NewUserRepo(db *sql.DB, tables kennel.Tables) (*UserRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}
	return &UserRepo{db: db, tableName: tables.Users}, nil
}

func (r *UserRepo) Create(ctx context.Context, u kennel.User) (kennel.User, error) {
	now := time.Now().UTC()
	u.ID = uuid.New()
	u.CreatedAt = now

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, username, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		u.ID.String(), u.Username, u.PasswordHash, u.Role, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return kennel.User{}, fmt.Errorf("create user: %w", kennel.ErrDuplicateUsername)
		}
		return kennel.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (kennel.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, username, password_hash, role, created_at
		FROM %s
		WHERE username = ?`, r.tableName)

	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (kennel.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, username, password_hash, role, created_at
		FROM %s
		WHERE id = ?`, r.tableName)

	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *UserRepo) scanUser(row *sql.Row) (kennel.User, error) {
	var u kennel.User
	var idStr, createdAt string

	err := row.Scan(&idStr, &u.Username, &u.PasswordHash, &u.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kennel.User{}, kennel.ErrNotFound
		}
		return kennel.User{}, fmt.Errorf("get user: %w", err)
	}

	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return kennel.User{}, fmt.Errorf("get user: parse uuid: %w", err)
	}

	u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return kennel.User{}, fmt.Errorf("get user: parse created_at: %w", err)
	}

	return u, nil
}

type ImageRepo struct {
	db        *sql.DB
	tableName string
}

func NewImageRepo(db *sql.DB, tables kennel.Tables) (*ImageRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new image repo: %w", err)
	}
	return &ImageRepo{db: db, tableName: tables.Images}, nil
}

const imageColumns = `id, owner_id, name, storage_path, content_type, file_size_bytes, created_at, updated_at`

func (r *ImageRepo) Create(ctx context.Context, img kennel.Image) (kennel.Image, error) {
	now := time.Now().UTC()
	img.ID = uuid.New()
	img.CreatedAt = now
	img.UpdatedAt = now

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName, imageColumns)

	_, err := r.db.ExecContext(ctx, query,
		img.ID.String(), img.OwnerID.String(), img.Name, img.StoragePath,
		img.ContentType, img.SizeBytes,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("create image: %w", err)
	}

	return img, nil
}

func (r *ImageRepo) Get(ctx context.Context, id uuid.UUID) (kennel.Image, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, imageColumns, r.tableName)

	return r.scanImage(r.db.QueryRowContext(ctx, query, id.String()), "get")
}

func (r *ImageRepo) GetByStoragePath(ctx context.Context, path string) (kennel.Image, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE storage_path = ?`, imageColumns, r.tableName)

	return r.scanImage(r.db.QueryRowContext(ctx, query, path), "get by storage path")
}

func (r *ImageRepo) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]kennel.Image, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s
		WHERE owner_id = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`, imageColumns, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, owner.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]kennel.Image, 0, limit)
	for rows.Next() {
		img, scanErr := r.scanImageRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("list images: %w", scanErr)
		}
		items = append(items, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: rows: %w", err)
	}

	return items, nil
}

func (r *ImageRepo) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT COUNT(*) FROM %s WHERE owner_id = ?`, r.tableName)

	var total int64
	if err := r.db.QueryRowContext(ctx, query, owner.String()).Scan(&total); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}

	return total, nil
}

func (r *ImageRepo) Update(ctx context.Context, img kennel.Image) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET name = ?, storage_path = ?, content_type = ?, file_size_bytes = ?, updated_at = ?
		WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query,
		img.Name, img.StoragePath, img.ContentType, img.SizeBytes, now, img.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update image: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update image: %w", kennel.ErrNotFound)
	}

	return nil
}

func (r *ImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete image: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete image: %w", kennel.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ImageRepo) scanImage(row *sql.Row, opName string) (kennel.Image, error) {
	img, err := r.scanImageRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kennel.Image{}, kennel.ErrNotFound
		}
		return kennel.Image{}, fmt.Errorf("%s: %w", opName, err)
	}
	return img, nil
}

func (r *ImageRepo) scanImageRow(row rowScanner) (kennel.Image, error) {
	var img kennel.Image
	var idStr, ownerStr, createdAt, updatedAt string

	err := row.Scan(&idStr, &ownerStr, &img.Name, &img.StoragePath,
		&img.ContentType, &img.SizeBytes, &createdAt, &updatedAt)
	if err != nil {
		return kennel.Image{}, err
	}

	img.ID, err = uuid.Parse(idStr)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("parse uuid: %w", err)
	}

	img.OwnerID, err = uuid.Parse(ownerStr)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("parse owner uuid: %w", err)
	}

	img.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("parse created_at: %w", err)
	}

	img.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return img, nil
}
