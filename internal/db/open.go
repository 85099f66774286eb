package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// cgo driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"
	// Pure Go driver (no CGO), registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/soaringjerry/Attentive/internal/services"
)

const (
	DriverSQLite3 = "sqlite3"
	DriverSQLite  = "sqlite"
	DriverMemory  = "memory"
)

// dsn builds a driver-specific DSN for path. ":memory:" is passed through.
func dsn(driver, path string) string {
	if path == ":memory:" {
		return path
	}
	switch driver {
	case DriverSQLite3:
		return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000&_foreign_keys=on", filepath.ToSlash(path))
	default:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	}
}

// OpenSQL opens a SQLite database with the given driver, creating the
// parent directory of path if needed.
func OpenSQL(driver, path string) (*sql.DB, error) {
	if driver != DriverSQLite3 && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every new connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Open returns a ready store for driver: "memory" needs no path, the two
// SQLite drivers are migrated before the store is returned. The closer
// releases the database handle.
func Open(ctx context.Context, driver, path, migrationsDir string) (services.Store, func() error, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), func() error { return nil }, nil
	}
	sqlDB, err := OpenSQL(driver, path)
	if err != nil {
		return nil, nil, err
	}
	st, err := NewSQLiteStore(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("init sqlite store: %w", err)
	}
	if _, err := RunMigrations(ctx, sqlDB, migrationsDir); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return st, sqlDB.Close, nil
}
