// Package seeder drives one seeding run: staging lifecycle, seed loading,
// conditional transfer, cleanup.
//
// The procedure is strictly sequential with no branching between steps:
//
//	drop stale staging → create staging → load catalog → transfer → drop staging
//
// Any step failure aborts the remaining work, but the final drop always
// runs; it is cleanup, not rollback. Rows transferred before a failure stay
// committed (every statement is its own transaction), so a rerun simply
// skips them.
package seeder

import (
	"context"
	"fmt"
	"log"
	"time"

	"dbseed/internal/metrics"
	"dbseed/internal/seed"
	"dbseed/internal/storage"
)

// Summary reports what one run did to the database.
type Summary struct {
	// Staged is the number of rows loaded into the staging table,
	// duplicates included.
	Staged int64

	// Inserted is the number of rows appended to the target table.
	Inserted int64

	// Skipped is the number of staged values already present in the target,
	// counting repeats of the same value.
	Skipped int64
}

// Run executes the full procedure against repo for the given seed names.
// job labels log lines and metrics.
//
// The returned Summary is valid even on error for the steps that completed.
func Run(ctx context.Context, job string, repo storage.Repository, names []string) (Summary, error) {
	var sum Summary

	log.Printf("seed: job=%s catalog=%d fingerprint=%s", job, len(names), seed.Fingerprint(names))

	if err := step(ctx, job, "staging_drop", func() error {
		return repo.DropStagingIfExists(ctx)
	}); err != nil {
		return sum, fmt.Errorf("drop stale staging: %w", err)
	}

	if err := step(ctx, job, "staging_create", func() error {
		return repo.CreateStaging(ctx)
	}); err != nil {
		return sum, fmt.Errorf("create staging: %w", err)
	}

	// From here on the staging table exists and must not outlive the run,
	// however the transfer ends. Cleanup gets a fresh short context when the
	// run's context is already dead, otherwise the drop could never execute.
	defer func() {
		dropCtx := ctx
		if ctx.Err() != nil {
			var cancel context.CancelFunc
			dropCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
		}
		if err := step(dropCtx, job, "cleanup", func() error {
			return repo.DropStagingIfExists(dropCtx)
		}); err != nil {
			log.Printf("seed: cleanup failed, staging table left behind: %v", err)
		}
	}()

	if err := step(ctx, job, "load", func() error {
		n, err := repo.InsertStaging(ctx, names)
		sum.Staged = n
		return err
	}); err != nil {
		return sum, fmt.Errorf("load staging: %w", err)
	}
	metrics.RecordRows(job, "staged", sum.Staged)

	if err := step(ctx, job, "transfer", func() error {
		inserted, skipped, err := transfer(ctx, repo)
		sum.Inserted, sum.Skipped = inserted, skipped
		return err
	}); err != nil {
		return sum, fmt.Errorf("transfer: %w", err)
	}
	metrics.RecordRows(job, "inserted", sum.Inserted)
	metrics.RecordRows(job, "skipped", sum.Skipped)

	log.Printf("seed: done job=%s staged=%d inserted=%d skipped=%d",
		job, sum.Staged, sum.Inserted, sum.Skipped)

	return sum, nil
}

// transfer walks staging rows in id order and conditionally inserts each
// name into the target. Rows are processed one at a time; a value staged
// twice is inserted on its first occurrence and skipped on the second.
func transfer(ctx context.Context, repo storage.Repository) (inserted, skipped int64, err error) {
	names, err := repo.StagingNames(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, name := range names {
		ok, err := repo.InsertIfAbsent(ctx, name)
		if err != nil {
			return inserted, skipped, err
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	log.Printf("transfer: inserted=%d skipped=%d", inserted, skipped)
	return inserted, skipped, nil
}

// step times fn and records a per-step metric with success/failure status.
func step(ctx context.Context, job, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}
