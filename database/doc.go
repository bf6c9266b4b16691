// Package database connects to the configured metadata backend (SQLite or
// PostgreSQL), runs migrations, validates the schema and hands back the
// repo implementations from the sqlite and postgres subpackages.
package database
