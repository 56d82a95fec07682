// Package migrations embeds the SQLite schema of the puzzle catalog.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
