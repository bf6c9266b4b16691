package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kennelhq/kennel/config"
	"github.com/kennelhq/kennel/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or verify the database schema",
	Long: `Connect to the configured database, create any missing tables
and indexes, and verify that the existing schema matches what the
server expects. The serve command does this on startup as well; run
migrate to prepare a database ahead of time or to check one.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	_, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	slog.Info("database schema ready",
		"type", cfg.Database.Type,
		"users_table", cfg.Database.Tables.Users,
		"images_table", cfg.Database.Tables.Images)
	return nil
}
