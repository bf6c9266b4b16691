package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kennelhq/kennel/config"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove orphaned upload files",
	Long: `Scan the upload directory and remove files that no database
row references.

Orphan files appear when a crash interrupts an update between writing
the replacement file and removing the old one. Run this periodically
to reclaim disk space.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	d, err := setupDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	slog.Info("starting sweep", "path", cfg.Storage.Path)

	removed, err := d.images.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	slog.Info("sweep complete", "files_removed", removed)
	return nil
}
