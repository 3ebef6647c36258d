package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change, one Go file per version; bun derives each
// migration name from its file name.
var Migrations = migrate.NewMigrations()
