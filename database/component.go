package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/database/migration"
	"github.com/kbukum/scribe/logger"
)

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db     *DB
	cfg    Config
	log    *logger.Logger
	migFS  fs.FS
	migDir string
}

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithMigrations registers the migration source applied on Start when
// AutoMigrate is enabled.
func (c *Component) WithMigrations(fsys fs.FS, dir string) *Component {
	c.migFS = fsys
	c.migDir = dir
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects to the database and optionally applies migrations.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.AutoMigrate && c.migFS != nil {
		if err := migration.MigrateUp(db.GormDB, c.migFS, c.migDir); err != nil {
			return fmt.Errorf("database migrate: %w", err)
		}
		c.log.Info("Migrations applied")
	}
	return nil
}

// Stop gracefully closes the database connection.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health returns the current health status of the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}

	h := c.db.CheckHealth(ctx)
	if !h.Connected {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "ping failed: " + h.Error}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a one-line summary for startup logs.
func (c *Component) Describe() string {
	details := fmt.Sprintf("sqlite pool=%d/%d", c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return details
}
