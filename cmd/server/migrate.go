package main

import (
	"context"
	"fmt"

	"multipark/backoffice/internal/db"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations to the dashboard and ferramentas stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Only the relational stores; the legacy store is not needed to migrate
		dashboard, ferramentas, err := openSQL(cfg)
		if err != nil {
			return err
		}
		defer dashboard.Close()
		defer ferramentas.Close()

		return runMigrations(cmd.Context(), dashboard, ferramentas)
	},
}

func runMigrations(ctx context.Context, dashboard, ferramentas *sqlx.DB) error {
	stores := []struct {
		name string
		conn *sqlx.DB
		dir  string
	}{
		{"dashboard", dashboard, migrations.DashboardDir},
		{"ferramentas", ferramentas, migrations.FerramentasDir},
	}
	for _, s := range stores {
		if err := db.WaitForPostgres(ctx, s.conn); err != nil {
			return fmt.Errorf("%s store: %w", s.name, err)
		}
		if err := db.RunMigrations(s.conn.DB, "postgres", s.dir); err != nil {
			return fmt.Errorf("%s store: %w", s.name, err)
		}
	}
	logging.Info("Migrations applied")
	return nil
}
