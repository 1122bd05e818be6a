package autostep

import "github.com/abelbrown/lemure/internal/span"

// Stats is an exact point count for a sub-range, as reported by the backend.
type Stats struct {
	Range  span.Range
	Points int
	Total  int
}

// Cache holds at most one Stats entry plus the token of the newest request.
// A response is applied only when it carries the newest token, so replies
// from superseded requests are dropped on arrival.
type Cache struct {
	token uint64
	entry *Stats
}

// Begin invalidates the cached entry and returns the token the next response
// must carry to be accepted.
func (c *Cache) Begin() uint64 {
	c.token++
	c.entry = nil
	return c.token
}

// Reset drops the entry and invalidates every in-flight request. Called when
// a new dataset is loaded.
func (c *Cache) Reset() {
	c.Begin()
}

// Token is the token of the newest request.
func (c *Cache) Token() uint64 { return c.token }

// Apply stores st if token is current. It reports whether st was accepted.
func (c *Cache) Apply(token uint64, st Stats) bool {
	if token != c.token {
		return false
	}
	st.Range = st.Range.Normalize()
	c.entry = &st
	return true
}

// Lookup returns the entry if it covers exactly r.
func (c *Cache) Lookup(r span.Range) (Stats, bool) {
	if c.entry == nil || c.entry.Range != r.Normalize() {
		return Stats{}, false
	}
	return *c.entry, true
}

// Entry returns the cached entry regardless of range.
func (c *Cache) Entry() (Stats, bool) {
	if c.entry == nil {
		return Stats{}, false
	}
	return *c.entry, true
}
