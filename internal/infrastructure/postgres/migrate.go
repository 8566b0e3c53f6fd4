package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/assets"
	"github.com/nexusliving/bms/internal/config"
)

// RunMigrations brings the schema up to date. The embedded migrations are
// used unless cfg.Path points at a directory on disk.
func RunMigrations(db config.DatabaseConfig, cfg config.MigrationsConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", db.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping postgres for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, source, err := newMigrator(cfg.Path, db.Name, driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations from %s: %w", source, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty; fix it by hand before restarting", version)
	}
	logger.Info("database migrations applied", zap.String("source", source), zap.Uint("version", version))
	return nil
}

func newMigrator(path, dbName string, driver database.Driver) (*migrate.Migrate, string, error) {
	if path != "" {
		url := "file://" + filepath.ToSlash(path)
		m, err := migrate.NewWithDatabaseInstance(url, dbName, driver)
		if err != nil {
			return nil, "", fmt.Errorf("load migrations from %s: %w", path, err)
		}
		return m, url, nil
	}

	src, err := iofs.New(assets.Migrations, "migrations")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return nil, "", fmt.Errorf("load embedded migrations: %w", err)
	}
	return m, "embedded", nil
}
