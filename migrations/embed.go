// Package migrations embeds the SQL schema so the server binary can migrate on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
