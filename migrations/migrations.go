// Package migrations содержит SQL-миграции, вшиваемые в бинарник.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
