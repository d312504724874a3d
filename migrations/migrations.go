// Package migrations embeds the SQL schema migrations for every moonlit database.
//
// content holds the local moon-phase cache, profile_sqlite and profile_postgres
// hold the profile store schema for each supported backend.
package migrations

import "embed"

//go:embed content/*.sql profile_sqlite/*.sql profile_postgres/*.sql
var FS embed.FS

// Sub-directory names within FS.
const (
	Content         = "content"
	ProfileSQLite   = "profile_sqlite"
	ProfilePostgres = "profile_postgres"
)
