package pipeline

import (
	"github.com/palantir/blastomatic/pkg/pipeline/schema"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// IdentityColumn holds the percent identity of a hit.
const IdentityColumn = "pident"

// FilterIdentity keeps the hits whose pident is at least minIdentity, in order.
//
// A non-numeric pident is a *core.ParseError. NaN parses but never passes.
func FilterIdentity(hits *table.Dataset, minIdentity float64) (*table.Dataset, error) {
	return hits.Filter(func(i int, _ []string) (bool, error) {
		v, err := schema.Float(hits, i, IdentityColumn)
		if err != nil {
			return false, err
		}
		return v >= minIdentity, nil
	})
}
