package seeder

import (
	"context"

	"dbseed/internal/storage"
)

// Report is the result of a read-only check of the catalog against the
// target table.
type Report struct {
	// Present lists catalog values already in the target, de-duplicated, in
	// catalog order.
	Present []string

	// Missing lists catalog values a run would insert, de-duplicated, in
	// catalog order.
	Missing []string
}

// Check performs a read-only pass over the seed names: no staging table is
// created and nothing is written. It answers "what would a run insert?".
func Check(ctx context.Context, repo storage.Repository, names []string) (Report, error) {
	var rep Report
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		ok, err := repo.Exists(ctx, name)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.Present = append(rep.Present, name)
		} else {
			rep.Missing = append(rep.Missing, name)
		}
	}
	return rep, nil
}
