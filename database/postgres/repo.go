// Package postgres implements the kennel repo interfaces using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kennelhq/kennel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type UserRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewUserRepo(pool *pgxpool.Pool, tables kennel.Tables) (*UserRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}
	return &UserRepo{pool: pool, tableName: tables.Users}, nil
}

// Ping verifies database connectivity
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepo) Create(ctx context.Context, u kennel.User) (kennel.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tableName)

	err := r.pool.QueryRow(ctx, query, u.Username, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return kennel.User{}, fmt.Errorf("create user: %w", kennel.ErrDuplicateUsername)
		}
		return kennel.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (kennel.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, role, created_at
		FROM %s
		WHERE username = $1
	`, r.tableName)

	var u kennel.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kennel.User{}, kennel.ErrNotFound
		}
		return kennel.User{}, fmt.Errorf("get user by username: %w", err)
	}

	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (kennel.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, role, created_at
		FROM %s
		WHERE id = $1
	`, r.tableName)

	var u kennel.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kennel.User{}, kennel.ErrNotFound
		}
		return kennel.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return u, nil
}

type ImageRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewImageRepo(pool *pgxpool.Pool, tables kennel.Tables) (*ImageRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new image repo: %w", err)
	}
	return &ImageRepo{pool: pool, tableName: tables.Images}, nil
}

const imageColumns = `id, owner_id, name, storage_path, content_type, file_size_bytes, created_at, updated_at`

func (r *ImageRepo) Create(ctx context.Context, img kennel.Image) (kennel.Image, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, storage_path, content_type, file_size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tableName)

	err := r.pool.QueryRow(ctx, query,
		img.OwnerID, img.Name, img.StoragePath, img.ContentType, img.SizeBytes,
	).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return kennel.Image{}, fmt.Errorf("create image: %w", err)
	}

	return img, nil
}

func (r *ImageRepo) Get(ctx context.Context, id uuid.UUID) (kennel.Image, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, imageColumns, r.tableName)

	var img kennel.Image
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.OwnerID, &img.Name, &img.StoragePath,
		&img.ContentType, &img.SizeBytes, &img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kennel.Image{}, kennel.ErrNotFound
		}
		return kennel.Image{}, fmt.Errorf("get image: %w", err)
	}

	return img, nil
}

func (r *ImageRepo) GetByStoragePath(ctx context.Context, path string) (kennel.Image, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE storage_path = $1
	`, imageColumns, r.tableName)

	var img kennel.Image
	err := r.pool.QueryRow(ctx, query, path).Scan(
		&img.ID, &img.OwnerID, &img.Name, &img.StoragePath,
		&img.ContentType, &img.SizeBytes, &img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kennel.Image{}, kennel.ErrNotFound
		}
		return kennel.Image{}, fmt.Errorf("get image by storage path: %w", err)
	}

	return img, nil
}

func (r *ImageRepo) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]kennel.Image, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, imageColumns, r.tableName)

	rows, err := r.pool.Query(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	items := make([]kennel.Image, 0, limit)
	for rows.Next() {
		var img kennel.Image
		if scanErr := rows.Scan(
			&img.ID, &img.OwnerID, &img.Name, &img.StoragePath,
			&img.ContentType, &img.SizeBytes, &img.CreatedAt, &img.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("list images: scan: %w", scanErr)
		}
		items = append(items, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: rows: %w", err)
	}

	return items, nil
}

func (r *ImageRepo) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_id = $1`, r.tableName)

	var total int64
	if err := r.pool.QueryRow(ctx, query, owner).Scan(&total); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}

	return total, nil
}

func (r *ImageRepo) Update(ctx context.Context, img kennel.Image) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, storage_path = $2, content_type = $3, file_size_bytes = $4, updated_at = NOW()
		WHERE id = $5
	`, r.tableName)

	result, err := r.pool.Exec(ctx, query,
		img.Name, img.StoragePath, img.ContentType, img.SizeBytes, img.ID,
	)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update image: %w", kennel.ErrNotFound)
	}

	return nil
}

func (r *ImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete image: %w", kennel.ErrNotFound)
	}

	return nil
}
