package cmd

import (
	"fmt"

	"calendar-sync/core/database"
	"calendar-sync/feature/calendar/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Runs the schema migration for users and calendar events and verifies every expected column exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		// 1. Migrate
		if err := rt.store.Migrate(cmd.Context()); err != nil {
			return err
		}

		// 2. Verify
		missing, err := database.MissingColumns(rt.db, models.ExpectedColumns())
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema is missing columns after migration: %v", missing)
		}

		rt.logger.Info("Schema is up to date", zap.Int("tables", len(models.ExpectedColumns())))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
