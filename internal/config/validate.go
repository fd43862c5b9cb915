// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "storage.db.dsn"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownKinds are the storage kinds shipped with the tool. The registry is the
// source of truth at runtime; this list only feeds static validation so a
// typo is caught before a backend lookup fails.
var knownKinds = map[string]bool{
	"postgres": true,
	"mysql":    true,
	"mssql":    true,
	"sqlite":   true,
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Callers may decide whether to treat
// warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	kind := strings.TrimSpace(c.Storage.Kind)
	if kind == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must be set (postgres, mysql, mssql, sqlite)",
		})
	} else if !knownKinds[kind] {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage.kind %q; expected one of postgres, mysql, mssql, sqlite", kind),
		})
	}

	db := c.Storage.DB
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "dsn must not be empty",
		})
	}
	if strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "table must not be empty",
		})
	}
	if strings.TrimSpace(db.IDColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.id_column",
			Message:  "id_column must not be empty",
		})
	}
	if strings.TrimSpace(db.NameColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.name_column",
			Message:  "name_column must not be empty",
		})
	}
	if strings.TrimSpace(db.StagingTable) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.staging_table",
			Message:  "staging_table must not be empty",
		})
	}
	if db.StagingTable != "" && db.StagingTable == db.Table {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.staging_table",
			Message:  "staging_table must differ from table; the staging table is dropped at the end of the run",
		})
	}

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
