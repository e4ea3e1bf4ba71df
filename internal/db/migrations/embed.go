// Package migrations holds the journal schema as embedded goose SQL files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
