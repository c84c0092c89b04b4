package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njprem/lighthouse-api/internal/config"
	"github.com/njprem/lighthouse-api/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.DatabaseDriver == "memory" {
		return fmt.Errorf("migrate: DATABASE_DRIVER=memory has no schema")
	}
	db, err := postgres.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: connect: %w", err)
	}
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(cmd.Context(), db.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
