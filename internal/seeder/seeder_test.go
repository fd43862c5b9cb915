package seeder

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"dbseed/internal/config"
	"dbseed/internal/seed"
	"dbseed/internal/storage"
	"dbseed/internal/storage/sqlite"
)

/*
Test helpers: an in-memory sqlite repository with the target table created,
standing in for the externally-owned missiles table.
*/

func newRepo(tb testing.TB) *sqlite.Repository {
	tb.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })

	r := sqlite.New(db, config.DBConfig{
		DSN:          ":memory:",
		Table:        "missiles",
		IDColumn:     "missile_id",
		NameColumn:   "model_name",
		StagingTable: "staging_missiles",
	})
	mustExec(tb, r, `CREATE TABLE "missiles" ("missile_id" INTEGER PRIMARY KEY AUTOINCREMENT, "model_name" TEXT NOT NULL)`)
	return r
}

func mustExec(tb testing.TB, r *sqlite.Repository, sqlStmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), sqlStmt); err != nil {
		tb.Fatalf("exec %q: %v", sqlStmt, err)
	}
}

func targetNames(tb testing.TB, r *sqlite.Repository) []string {
	tb.Helper()
	rows, err := r.TargetRows(context.Background())
	if err != nil {
		tb.Fatalf("TargetRows: %v", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names
}

func stagingGone(tb testing.TB, r *sqlite.Repository) {
	tb.Helper()
	_, err := r.StagingNames(context.Background())
	if !errors.Is(err, storage.ErrSchema) {
		tb.Fatalf("staging table should not exist after the run; StagingNames err = %v", err)
	}
}

/*
Procedure tests
*/

// TestRunIntoEmptyTarget seeds a fresh table: every value lands once, in
// catalog order, and the staging table is gone afterwards.
func TestRunIntoEmptyTarget(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	in := []string{"Shahed-136/131", "Kalibr", "X-22"}

	sum, err := Run(context.Background(), "test", r, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Staged != 3 || sum.Inserted != 3 || sum.Skipped != 0 {
		t.Fatalf("Summary = %+v, want staged=3 inserted=3 skipped=0", sum)
	}

	got := targetNames(t, r)
	if len(got) != len(in) {
		t.Fatalf("target has %d rows, want %d: %v", len(got), len(in), got)
	}
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("target[%d] = %q, want %q", i, got[i], in[i])
		}
	}
	stagingGone(t, r)
}

// TestRunPreservesExistingRows covers the concrete scenario: a target
// already holding "Kalibr" gains only the other values, and the original
// row keeps its id.
func TestRunPreservesExistingRows(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `INSERT INTO "missiles" ("model_name") VALUES ('Kalibr')`)

	before, err := r.TargetRows(ctx)
	if err != nil {
		t.Fatalf("TargetRows: %v", err)
	}
	kalibrID := before[0].ID

	sum, err := Run(ctx, "test", r, []string{"Shahed-136/131", "Kalibr", "X-22"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Inserted != 2 || sum.Skipped != 1 {
		t.Fatalf("Summary = %+v, want inserted=2 skipped=1", sum)
	}

	after, err := r.TargetRows(ctx)
	if err != nil {
		t.Fatalf("TargetRows: %v", err)
	}
	want := map[string]bool{"Shahed-136/131": true, "Kalibr": true, "X-22": true}
	if len(after) != len(want) {
		t.Fatalf("target has %d rows, want %d: %v", len(after), len(want), after)
	}
	for _, row := range after {
		if !want[row.Name] {
			t.Fatalf("unexpected target row %q", row.Name)
		}
		if row.Name == "Kalibr" && row.ID != kalibrID {
			t.Fatalf("Kalibr id changed: %d -> %d", kalibrID, row.ID)
		}
	}
	stagingGone(t, r)
}

// TestRunIsIdempotent runs the procedure twice; the second run inserts
// nothing and leaves the target unchanged.
func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	in := seed.Models()

	if _, err := Run(ctx, "test", r, in); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, err := r.TargetRows(ctx)
	if err != nil {
		t.Fatalf("TargetRows: %v", err)
	}

	sum, err := Run(ctx, "test", r, in)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Inserted != 0 {
		t.Fatalf("second Run inserted %d rows, want 0", sum.Inserted)
	}
	if sum.Skipped != int64(len(in)) {
		t.Fatalf("second Run skipped %d, want %d", sum.Skipped, len(in))
	}

	second, err := r.TargetRows(ctx)
	if err != nil {
		t.Fatalf("TargetRows: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("target changed between runs: %d -> %d rows", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("target row %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
	stagingGone(t, r)
}

// TestRunCollapsesDuplicateSeeds: a value staged twice produces one target
// row; the repeat is counted as skipped.
func TestRunCollapsesDuplicateSeeds(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	in := []string{"X-101/X-555", "Kalibr", "X-101/X-555"}

	sum, err := Run(context.Background(), "test", r, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Staged != 3 {
		t.Fatalf("Staged = %d, want 3 (duplicates are staged as distinct rows)", sum.Staged)
	}
	if sum.Inserted != 2 || sum.Skipped != 1 {
		t.Fatalf("Summary = %+v, want inserted=2 skipped=1", sum)
	}

	var count int
	for _, name := range targetNames(t, r) {
		if name == "X-101/X-555" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("target holds %d rows for the duplicated value, want 1", count)
	}
}

// TestRunShippedCatalog seeds the real catalog: every distinct value present
// exactly once afterwards.
func TestRunShippedCatalog(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	in := seed.Models()

	if _, err := Run(context.Background(), "test", r, in); err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts := map[string]int{}
	for _, name := range targetNames(t, r) {
		counts[name]++
	}
	for _, name := range in {
		if counts[name] != 1 {
			t.Fatalf("catalog value %q present %d times, want 1", name, counts[name])
		}
	}
	stagingGone(t, r)
}

// TestRunFailsWithoutTargetTable: the target is an external collaborator;
// its absence is a schema error and aborts the run, but the staging table is
// still cleaned up.
func TestRunFailsWithoutTargetTable(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	mustExec(t, r, `DROP TABLE "missiles"`)

	_, err := Run(context.Background(), "test", r, []string{"Kalibr"})
	if err == nil {
		t.Fatal("Run without target table: want error, got nil")
	}
	if !errors.Is(err, storage.ErrSchema) {
		t.Fatalf("Run without target table: want ErrSchema, got %v", err)
	}
	stagingGone(t, r)
}

// TestRunCleansUpAfterTransferFailure injects a failure mid-transfer and
// verifies cleanup still drops the staging table while earlier inserts
// survive.
func TestRunCleansUpAfterTransferFailure(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	fr := &failingRepo{Repository: r, failOn: "X-22"}

	_, err := Run(context.Background(), "test", fr, []string{"Kalibr", "X-22", "Onyx"})
	if err == nil {
		t.Fatal("Run with injected failure: want error, got nil")
	}

	// The row transferred before the failure stays committed.
	names := targetNames(t, r)
	if len(names) != 1 || names[0] != "Kalibr" {
		t.Fatalf("target after failure = %v, want [Kalibr]", names)
	}
	stagingGone(t, r)
}

// TestRunCleansUpAfterCancellation cancels the run's context mid-transfer;
// the staging table is still dropped even though the context is dead.
func TestRunCleansUpAfterCancellation(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cr := &cancelingRepo{Repository: r, cancel: cancel}

	_, err := Run(ctx, "test", cr, []string{"Kalibr", "X-22"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run with canceled context: err = %v, want context.Canceled", err)
	}
	stagingGone(t, r)
}

var errInjected = errors.New("injected failure")

// failingRepo wraps a real repository and fails InsertIfAbsent for one name.
type failingRepo struct {
	*sqlite.Repository
	failOn string
}

func (f *failingRepo) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	if name == f.failOn {
		return false, errInjected
	}
	return f.Repository.InsertIfAbsent(ctx, name)
}

// cancelingRepo cancels the run's context on the first transfer insert.
type cancelingRepo struct {
	*sqlite.Repository
	cancel context.CancelFunc
}

func (c *cancelingRepo) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	c.cancel()
	return false, ctx.Err()
}
