// internal/infrastructure/persistence/postgres/migrations/embed.go
package migrations

import "embed"

// FS SQL-миграции в формате golang-migrate
//
//go:embed *.sql
var FS embed.FS
