// Package migrations embeds the versioned schema files for each store.
package migrations

import "embed"

// FS holds the sqlite/ and postgres/ migration directories.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
