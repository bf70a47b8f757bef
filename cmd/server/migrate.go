package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"employee-records/internal/config"
	"employee-records/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Parse()
		if err := cfg.ValidateDatabase(); err != nil {
			return err
		}

		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		slog.Info("migrations applied")
		return nil
	},
}

var migrateDownSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Parse()
		if err := cfg.ValidateDatabase(); err != nil {
			return err
		}

		if err := database.MigrateDown(cfg.DatabaseURL, migrateDownSteps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		slog.Info("migrations rolled back", "steps", migrateDownSteps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")
}
