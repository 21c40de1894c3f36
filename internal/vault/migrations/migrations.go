// Package migrations embeds the vault schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
