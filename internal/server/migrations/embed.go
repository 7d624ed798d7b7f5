// Package migrations embeds the SQL schema migrations that the database
// manager applies with goose at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
