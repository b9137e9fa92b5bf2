// Package hash derives stable numeric identifiers for curve groups.
package hash

import "github.com/cespare/xxhash/v2"

// GroupID computes the xxHash64 of a curve's grouping label. The hash gives
// batch bookkeeping a fixed-width key that is stable across runs regardless
// of how the label is formatted in the input table.
func GroupID(label string) uint64 {
	return xxhash.Sum64String(label)
}
