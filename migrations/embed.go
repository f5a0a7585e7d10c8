// Package migrations содержит SQL миграции PostgreSQL для goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
