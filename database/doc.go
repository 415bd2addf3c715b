// Package database provides a GORM-backed SQLite component with connection
// pooling, health checks, transactions, and migration support.
//
// Clip metadata and persisted transcripts live here. Schema changes are
// applied from the embedded SQL files in package migrations through the
// migration subpackage:
//
//	comp := database.NewComponent(cfg, log).WithMigrations(migrations.FS, ".")
//	registry.Register(comp)
//
// # Subpackages
//
//   - migration: file-based migrations using golang-migrate
package database
