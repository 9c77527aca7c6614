package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/database"
)

// NewMigrateCommand applies pending schema migrations and exits.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations. Databases created before versioned
migrations are baselined from their existing columns first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := database.Open(&cfg.Database, logger)
			if err != nil {
				return err
			}
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.Database.Path, database.LatestVersion)
			return nil
		},
	}
}
