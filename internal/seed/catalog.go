// Package seed holds the fixed catalog of missile and drone model names the
// tool merges into the target table. The catalog is literal data compiled
// into the binary: one run has no inputs beyond its database config.
package seed

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// models is the ordered seed catalog. Order matters: staging ids are assigned
// in this order and the transfer walks them ascending. Duplicates are legal;
// the staging table has no uniqueness on the name and the transfer collapses
// them to one target row.
var models = []string{
	"Shahed-136/131",
	"Kalibr",
	"X-22",
	"X-101/X-555",
	"Iskander-M",
	"Iskander-K",
	"X-47 Kinzhal",
	"S-300",
	"X-59",
	"X-31P",
	"X-35",
	"Onyx",
	"X-101/X-555", // listed twice upstream; the transfer collapses it
	"Orlan-10",
	"Lancet",
}

// Models returns a copy of the catalog in seeding order.
func Models() []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// Len returns the catalog size, duplicates included.
func Len() int { return len(models) }

// Fingerprint returns a stable hex digest of the given names in order.
// Logged at run start so operators can tell two runs seeded the same catalog
// without diffing lists. Names are joined with NUL, which cannot occur in a
// model name.
func Fingerprint(names []string) string {
	h := xxh3.New()
	for _, n := range names {
		_, _ = h.WriteString(n)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
