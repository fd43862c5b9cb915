// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. It is the primary backend; the schema this tool seeds lives in
// Postgres in production.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dbseed/internal/config"
	"dbseed/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg config.DBConfig) (storage.Repository, func(), error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  config.DBConfig
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg config.DBConfig) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// DropStagingIfExists implements storage.Repository.
func (r *Repository) DropStagingIfExists(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, dropStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("postgres: drop staging: %w", classify(err))
	}
	return nil
}

// CreateStaging implements storage.Repository.
func (r *Repository) CreateStaging(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createStagingSQL(r.cfg)); err != nil {
		return fmt.Errorf("postgres: create staging: %w", classify(err))
	}
	return nil
}

// InsertStaging bulk-loads names via COPY. pgx preserves input order, so the
// identity ids ascend in catalog order.
func (r *Repository) InsertStaging(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(names))
	for _, n := range names {
		rows = append(rows, []any{n})
	}
	n, err := r.pool.CopyFrom(ctx,
		splitFQN(r.cfg.StagingTable),
		[]string{r.cfg.NameColumn},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return n, fmt.Errorf("postgres: copy into staging: %w", classify(err))
	}
	return n, nil
}

// StagingNames implements storage.Repository.
func (r *Repository) StagingNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, stagingNamesSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: staging names: %w", classify(err))
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: staging names: %w", classify(err))
	}
	return names, nil
}

// InsertIfAbsent implements storage.Repository as one INSERT ... SELECT
// WHERE NOT EXISTS statement, so the existence check and the insert cannot
// interleave with each other within this run.
func (r *Repository) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, insertIfAbsentSQL(r.cfg), name)
	if err != nil {
		return false, fmt.Errorf("postgres: insert %q: %w", name, classify(err))
	}
	return tag.RowsAffected() > 0, nil
}

// Exists implements storage.Repository.
func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	var present bool
	if err := r.pool.QueryRow(ctx, existsSQL(r.cfg), name).Scan(&present); err != nil {
		return false, fmt.Errorf("postgres: exists %q: %w", name, classify(err))
	}
	return present, nil
}

// TargetRows implements storage.Repository.
func (r *Repository) TargetRows(ctx context.Context) ([]storage.Row, error) {
	rows, err := r.pool.Query(ctx, targetRowsSQL(r.cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: target rows: %w", classify(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Row, error) {
		var sr storage.Row
		err := row.Scan(&sr.ID, &sr.Name)
		return sr, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: target rows: %w", classify(err))
	}
	return out, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sqlStmt); err != nil {
		return fmt.Errorf("postgres: exec: %w", classify(err))
	}
	return nil
}

// classify maps PgError SQLSTATE codes onto the shared storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "42P01", // undefined_table
		"42P07", // duplicate_table
		"42703": // undefined_column
		return fmt.Errorf("%w: %v", storage.ErrSchema, err)
	case "23502", // not_null_violation
		"23505": // unique_violation
		return fmt.Errorf("%w: %v", storage.ErrConstraint, err)
	}
	return err
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
