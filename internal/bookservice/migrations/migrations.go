// Package migrations embeds the BookService schema migrations for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
