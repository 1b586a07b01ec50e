// Package migrations embeds the PostgreSQL schema files.
package migrations

import "embed"

// FS holds the numbered up/down SQL files. Up files apply in lexical order.
//
//go:embed *.sql
var FS embed.FS
