package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kennelhq/kennel/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "kennel",
	Short:   "Dog image hosting server with token authentication",
	Long: `Kennel is a dog image hosting server. Users register, log in,
and manage their own uploaded images through a JSON REST API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if cf, _ := cmd.Flags().GetString("config"); cf != "" {
			configFiles = append(configFiles, cf)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: KENNEL_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: kennel.db, env: KENNEL_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "upload directory path (default: ./uploads, env: KENNEL_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("auth-secret", "", "token signing secret (env: KENNEL_AUTH_SECRET)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
