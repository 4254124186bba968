// Package track de-duplicates a polled or streamed source against its
// last-seen value. Each tracker holds exactly one slot: returning to a
// value seen two observations ago is reported as a change again.
package track

import "bytes"

// Tracker remembers the most recent observation for a single source.
// It must only be driven by the one loop that owns its source; it is
// not safe for concurrent use, and by design never needs to be.
type Tracker struct {
	last []byte
	seen bool
}

// New returns an empty tracker. The first observation always reports a
// change.
func New() *Tracker {
	return &Tracker{}
}

// Observe records value and reports whether it differs from the
// immediately preceding observation. Comparison is by content, not
// reference; the tracker keeps its own copy.
func (t *Tracker) Observe(value []byte) bool {
	if t.seen && bytes.Equal(t.last, value) {
		return false
	}
	t.last = append(t.last[:0], value...)
	t.seen = true
	return true
}

// ObserveString is Observe for string-typed sources.
func (t *Tracker) ObserveString(value string) bool {
	if t.seen && string(t.last) == value {
		return false
	}
	t.last = append(t.last[:0], value...)
	t.seen = true
	return true
}

// Reset clears the slot so the next observation reports a change.
func (t *Tracker) Reset() {
	t.last = t.last[:0]
	t.seen = false
}
