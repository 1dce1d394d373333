// Package migrations embeds the schema shared by every storage backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
