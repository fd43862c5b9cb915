// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. It is the hermetic backend:
// the procedure tests run against ":memory:" databases and never need a
// server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dbseed/internal/config"
	"dbseed/internal/storage"

	sqlite3 "modernc.org/sqlite"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg config.DBConfig) (storage.Repository, func(), error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg config.DBConfig
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:seed.db?cache=shared&_fk=1"
//	":memory:"
func NewRepository(ctx context.Context, cfg config.DBConfig) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// New wraps an already-open database handle. Used by tests that share one
// ":memory:" connection across setup and assertions.
func New(db *sql.DB, cfg config.DBConfig) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// DropStagingIfExists implements storage.Repository.
func (r *Repository) DropStagingIfExists(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, dropStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("sqlite: drop staging: %w", classify(err))
	}
	return nil
}

// CreateStaging implements storage.Repository. The staging table carries a
// rowid-backed identity id so insertion order is recoverable.
func (r *Repository) CreateStaging(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("sqlite: create staging: %w", classify(err))
	}
	return nil
}

// InsertStaging inserts names in order inside one transaction with a
// prepared statement; SQLite has no bulk-load API, but a single transaction
// keeps this cheap for catalog-sized input.
func (r *Repository) InsertStaging(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertStagingSQL(r.cfg))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", classify(err))
	}
	defer stmt.Close()

	var inserted int64
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: stage %q: %w", name, classify(err))
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// StagingNames implements storage.Repository.
func (r *Repository) StagingNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, stagingNamesSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: staging names: %w", classify(err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("sqlite: scan staging name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: staging names: %w", err)
	}
	return names, nil
}

// InsertIfAbsent implements storage.Repository as one INSERT ... SELECT
// WHERE NOT EXISTS statement; rows-affected distinguishes insert from skip.
func (r *Repository) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertIfAbsentSQL(r.cfg), name, name)
	if err != nil {
		return false, fmt.Errorf("sqlite: insert %q: %w", name, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n > 0, nil
}

// Exists implements storage.Repository.
func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	var present bool
	if err := r.db.QueryRowContext(ctx, existsSQL(r.cfg), name).Scan(&present); err != nil {
		return false, fmt.Errorf("sqlite: exists %q: %w", name, classify(err))
	}
	return present, nil
}

// TargetRows implements storage.Repository.
func (r *Repository) TargetRows(ctx context.Context) ([]storage.Row, error) {
	rows, err := r.db.QueryContext(ctx, targetRowsSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: target rows: %w", classify(err))
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		var row storage.Row
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scan target row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: target rows: %w", err)
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically test setup DDL).
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlStmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", classify(err))
	}
	return nil
}

// classify maps driver errors onto the shared storage sentinels. SQLite
// reports schema problems as generic SQLITE_ERROR, so those are matched by
// message; constraint violations carry primary code 19.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		if se.Code()&0xff == 19 { // SQLITE_CONSTRAINT and extended codes
			return fmt.Errorf("%w: %v", storage.ErrConstraint, err)
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "has no column named"):
		return fmt.Errorf("%w: %v", storage.ErrSchema, err)
	case strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", storage.ErrConstraint, err)
	}
	return err
}
