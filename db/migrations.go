// Package db carries the embedded SQL migrations so binaries and tests can
// migrate a database without a migrations directory on disk.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
