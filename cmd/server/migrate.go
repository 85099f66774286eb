package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	dbstore "github.com/soaringjerry/Attentive/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Driver == dbstore.DriverMemory {
			return fmt.Errorf("nothing to migrate for the %q driver", cfg.Driver)
		}
		applied, err := migrateSQLite(cmd.Context(), cfg.Driver, cfg.DBPath, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return nil
	},
}

func migrateSQLite(ctx context.Context, driver, path, migrationsDir string) ([]string, error) {
	sqlDB, err := dbstore.OpenSQL(driver, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sqlDB.Close() }()
	if _, err := dbstore.NewSQLiteStore(sqlDB); err != nil {
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	applied, err := dbstore.RunMigrations(ctx, sqlDB, migrationsDir)
	if err != nil {
		return applied, fmt.Errorf("run migrations: %w", err)
	}
	return applied, nil
}
