// Package mysql implements a MySQL/MariaDB-backed storage.Repository using
// database/sql and the go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dbseed/internal/config"
	"dbseed/internal/storage"

	"github.com/go-sql-driver/mysql"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg config.DBConfig) (storage.Repository, func(), error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg config.DBConfig
}

// NewRepository opens a MySQL connection using the provided DSN
// (e.g. "user:pass@tcp(localhost:3306)/db_lab") and returns a Repository
// plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg config.DBConfig) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// DropStagingIfExists implements storage.Repository.
func (r *Repository) DropStagingIfExists(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, dropStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("mysql: drop staging: %w", classify(err))
	}
	return nil
}

// CreateStaging implements storage.Repository.
func (r *Repository) CreateStaging(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("mysql: create staging: %w", classify(err))
	}
	return nil
}

// InsertStaging inserts names in order with one multi-row INSERT; MySQL
// assigns AUTO_INCREMENT ids in value-list order.
func (r *Repository) InsertStaging(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	stmt, args := insertStagingSQL(r.cfg, names)
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: stage names: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n, nil
}

// StagingNames implements storage.Repository.
func (r *Repository) StagingNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, stagingNamesSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql: staging names: %w", classify(err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("mysql: scan staging name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: staging names: %w", err)
	}
	return names, nil
}

// InsertIfAbsent implements storage.Repository. The comparison uses the
// target column's collation; configure a case-sensitive (or binary)
// collation on the name column to keep exact-match semantics.
func (r *Repository) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertIfAbsentSQL(r.cfg), name, name)
	if err != nil {
		return false, fmt.Errorf("mysql: insert %q: %w", name, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n > 0, nil
}

// Exists implements storage.Repository.
func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	var present bool
	if err := r.db.QueryRowContext(ctx, existsSQL(r.cfg), name).Scan(&present); err != nil {
		return false, fmt.Errorf("mysql: exists %q: %w", name, classify(err))
	}
	return present, nil
}

// TargetRows implements storage.Repository.
func (r *Repository) TargetRows(ctx context.Context) ([]storage.Row, error) {
	rows, err := r.db.QueryContext(ctx, targetRowsSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql: target rows: %w", classify(err))
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		var row storage.Row
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("mysql: scan target row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: target rows: %w", err)
	}
	return out, nil
}

// Exec implements storage.Repository.Exec for MySQL.
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlStmt); err != nil {
		return fmt.Errorf("mysql: exec: %w", classify(err))
	}
	return nil
}

// classify maps MySQL server error numbers onto the shared storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case 1146, // ER_NO_SUCH_TABLE
		1050, // ER_TABLE_EXISTS_ERROR
		1054: // ER_BAD_FIELD_ERROR
		return fmt.Errorf("%w: %v", storage.ErrSchema, err)
	case 1048, // ER_BAD_NULL_ERROR
		1062: // ER_DUP_ENTRY
		return fmt.Errorf("%w: %v", storage.ErrConstraint, err)
	}
	return err
}
