// Package db embeds the SQL migrations so cmd/migrate and the integration
// tests apply the same schema.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
