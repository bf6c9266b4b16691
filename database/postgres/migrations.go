package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kennelhq/kennel"
)

func createUsersTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// DropTables removes both tables. The images table goes first because it
// references the users table.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables kennel.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	for _, name := range []string{tables.Images, tables.Users} {
		quoted := pgx.Identifier{name}.Sanitize()
		if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoted)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}
	return nil
}

func createImagesTable(ctx context.Context, pool *pgxpool.Pool, tableName, usersTableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	quotedUsers := pgx.Identifier{usersTableName}.Sanitize()
	indexOwnerList := pgx.Identifier{fmt.Sprintf("idx_%s_owner_list", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL REFERENCES %s (id),
			name TEXT NOT NULL,
			storage_path TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL,
			file_size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (owner_id, created_at, id);
	`,
		quotedTable, quotedUsers,
		indexOwnerList, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create images table: %w", err)
	}
	return nil
}
