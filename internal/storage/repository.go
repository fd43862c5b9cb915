// Package storage contains the database-agnostic contract for one seeding
// run, a registry where concrete backends (postgres, mysql, mssql, sqlite)
// install themselves, and the shared error taxonomy.
package storage

import "context"

// Row is one row of the target table as read back for exports and checks.
type Row struct {
	ID   int64  `json:"missile_id"`
	Name string `json:"model_name"`
}

// Repository is the minimal database contract the seeding procedure needs.
// Implementations live in backend subpackages and register a Factory with
// this package at init time.
type Repository interface {
	// DropStagingIfExists removes the staging table when present. It is used
	// both before CreateStaging and as the unconditional cleanup at the end
	// of a run; a missing table is not an error.
	DropStagingIfExists(ctx context.Context) error

	// CreateStaging creates the staging table with exactly two columns: a
	// backend-native identity integer primary key and a NOT NULL text column
	// matching the target's name column. A table that already exists yields
	// an error satisfying errors.Is(err, ErrSchema).
	CreateStaging(ctx context.Context) error

	// InsertStaging bulk-inserts the given names into the staging table in
	// order, so identity ids ascend in input order. Duplicates are inserted
	// as distinct rows. Returns the number of rows inserted.
	InsertStaging(ctx context.Context, names []string) (int64, error)

	// StagingNames returns the staged names ordered by id ascending.
	StagingNames(ctx context.Context) ([]string, error)

	// InsertIfAbsent inserts name into the target table unless a row with
	// that exact name already exists. The check and the insert execute as a
	// single statement. Reports whether a row was inserted.
	InsertIfAbsent(ctx context.Context, name string) (bool, error)

	// Exists reports whether the target table already holds name. Exact,
	// case-sensitive match.
	Exists(ctx context.Context, name string) (bool, error)

	// TargetRows returns all target rows ordered by id ascending.
	TargetRows(ctx context.Context) ([]Row, error)

	// Exec runs an arbitrary SQL statement. Used by tests and for ad-hoc
	// setup of the externally-owned target table.
	Exec(ctx context.Context, sql string) error
}
