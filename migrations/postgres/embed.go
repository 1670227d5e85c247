// Package migrations embeds the SQL migrations of the postgres registry adapter.
package migrations

import "embed"

// FS contains the registry migrations, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
