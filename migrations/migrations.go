// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds the versioned migration files at its root.
//
//go:embed *.sql
var FS embed.FS
