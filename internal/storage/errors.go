package storage

import "errors"

// Sentinel errors shared by every backend. Backends wrap driver errors so
// callers can branch with errors.Is without importing driver packages.
var (
	// ErrSchema marks schema-level failures: a missing or pre-existing
	// table, or an unknown column. Not recoverable within a run.
	ErrSchema = errors.New("schema error")

	// ErrConstraint marks constraint violations, primarily NOT NULL or
	// unique violations on insert.
	ErrConstraint = errors.New("constraint violation")
)
