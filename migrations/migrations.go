// Package migrations embeds the decisiontree schema for each supported driver.
package migrations

import "embed"

// Schema files ship inside the binary; one directory per driver.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
