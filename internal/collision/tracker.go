// Package collision validates curve identifiers within a batch.
package collision

import (
	"github.com/leafgas/photofit/errs"
)

// Tracker checks batch curve identifiers as they are registered. Batch results
// are keyed by identifier, so a duplicate would silently overwrite an earlier
// fit; distinct identifiers mapping to the same group hash are legal but worth
// surfacing to anyone joining outputs on group_id.
type Tracker struct {
	byHash       map[uint64]string
	seen         map[string]struct{}
	ids          []string
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash: make(map[uint64]string),
		seen:   make(map[string]struct{}),
	}
}

// Track registers one curve identifier with its group hash. It returns an
// error for an empty or previously registered identifier. A hash collision
// between distinct identifiers is not an error; it sets the collision flag.
func (t *Tracker) Track(id string, hash uint64) error {
	if id == "" {
		return errs.ErrEmptyCurveID
	}
	if _, exists := t.seen[id]; exists {
		return errs.ErrDuplicateCurve
	}

	if existing, exists := t.byHash[hash]; exists && existing != id {
		t.hasCollision = true
	}

	t.byHash[hash] = id
	t.seen[id] = struct{}{}
	t.ids = append(t.ids, id)

	return nil
}

// HasCollision reports whether two distinct identifiers share a group hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// IDs returns the registered identifiers in registration order.
func (t *Tracker) IDs() []string {
	return t.ids
}

// Count returns the number of registered identifiers.
func (t *Tracker) Count() int {
	return len(t.ids)
}

// Reset clears the tracker for reuse, preserving allocated capacity.
func (t *Tracker) Reset() {
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	for k := range t.seen {
		delete(t.seen, k)
	}
	t.ids = t.ids[:0]
	t.hasCollision = false
}
