// Package migration applies versioned SQL migrations with golang-migrate.
//
// Migration files follow the pattern VERSION_name.up.sql and
// VERSION_name.down.sql and are read from any fs.FS, typically an embed.FS:
//
//	err := migration.MigrateUp(db.GormDB, migrations.FS, ".")
package migration

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// MigrateUp runs all pending migrations.
// Returns nil if there are no new migrations to apply.
func MigrateUp(gormDB *gorm.DB, fsys fs.FS, path string) error {
	m, err := newMigrator(gormDB, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations.
func MigrateDown(gormDB *gorm.DB, fsys fs.FS, path string) error {
	m, err := newMigrator(gormDB, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateSteps runs n migrations (positive = up, negative = down).
func MigrateSteps(gormDB *gorm.DB, fsys fs.FS, path string, n int) error {
	m, err := newMigrator(gormDB, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	return nil
}

// Version returns the current migration version and dirty flag. A database
// without applied migrations reports version 0.
func Version(gormDB *gorm.DB, fsys fs.FS, path string) (uint, bool, error) {
	m, err := newMigrator(gormDB, fsys, path)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// newMigrator creates a golang-migrate instance over the shared connection.
// Callers must not call m.Close(): it would close the shared sql.DB.
func newMigrator(gormDB *gorm.DB, fsys fs.FS, path string) (*migrate.Migrate, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite3 driver: %w", err)
	}

	source, err := iofs.New(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
