// Package all registers every storage backend with the storage registry.
// Binaries blank-import this package so any configured kind resolves.
package all

import (
	_ "dbseed/internal/storage/mssql"
	_ "dbseed/internal/storage/mysql"
	_ "dbseed/internal/storage/postgres"
	_ "dbseed/internal/storage/sqlite"
)
