package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kennelhq/kennel"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

// getTableMigrations returns all table migrations for the app. Users come
// first so the images table can reference them.
func getTableMigrations(tables kennel.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Users,
			Up:        createUsersTable(tables.Users),
			Down:      dropTable(tables.Users),
		},
		{
			TableName: tables.Images,
			Up:        createImagesTable(tables.Images, tables.Users),
			Down:      dropTable(tables.Images),
		},
	}
}

func Migrate(ctx context.Context, db *sql.DB, tables kennel.Tables) error {
	migrations := getTableMigrations(tables)

	for _, migration := range migrations {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables kennel.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createUsersTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		indexUsername := quoteIdentifier(fmt.Sprintf("idx_%s_username", tableName))

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				username TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'user',
				created_at TEXT NOT NULL
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		// The unique index is the enforcement point for username
		// uniqueness; the service's existence check is an early exit.
		indexSQL := fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (username)
		`, indexUsername, quotedTable)

		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index username: %w", err)
		}

		return nil
	}
}

func createImagesTable(tableName, usersTableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		quotedUsers := quoteIdentifier(usersTableName)
		indexOwnerList := quoteIdentifier(fmt.Sprintf("idx_%s_owner_list", tableName))

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES %s (id),
				name TEXT NOT NULL,
				storage_path TEXT NOT NULL UNIQUE,
				content_type TEXT NOT NULL,
				file_size_bytes INTEGER NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`, quotedTable, quotedUsers)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s (owner_id, created_at, id)
		`, indexOwnerList, quotedTable)

		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index owner_list: %w", err)
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)

		_, err := db.ExecContext(ctx, dropSQL)
		return err
	}
}
