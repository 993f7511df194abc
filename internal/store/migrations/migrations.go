// Package migrations carries the embedded schema migrations for the
// metadata cache.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
