// Package migrations embeds the goose SQL migrations of both relational stores.
package migrations

import "embed"

// FS holds dashboard/*.sql and ferramentas/*.sql
//
//go:embed dashboard/*.sql ferramentas/*.sql
var FS embed.FS

// Directories inside FS, one per store
const (
	DashboardDir   = "dashboard"
	FerramentasDir = "ferramentas"
)
