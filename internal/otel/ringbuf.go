package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 1024

// RingBuffer keeps the most recent events of a session in memory for the
// log panel. Goroutine-safe.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []Event
	next int  // slot the next Push writes
	full bool // buf has wrapped at least once
}

// NewRingBuffer creates a ring buffer holding size events. A size of zero
// or less means DefaultRingSize.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{buf: make([]Event, size)}
}

// Push stores e, evicting the oldest event when the buffer is full. Extra
// is copied so later changes by the caller do not show up in the panel.
func (r *RingBuffer) Push(e Event) {
	e.Extra = maps.Clone(e.Extra)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next++
	if r.next == len(r.buf) {
		r.next, r.full = 0, true
	}
}

// at returns the i-th buffered event, oldest first. Callers hold mu.
func (r *RingBuffer) at(i int) Event {
	if !r.full {
		return r.buf[i]
	}
	return r.buf[(r.next+i)%len(r.buf)]
}

func (r *RingBuffer) length() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// Snapshot returns a copy of the buffered events, oldest first, or nil when
// the buffer is empty.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.length()
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

// LastAtLeast returns up to n of the most recent events whose level ranks at
// or above floor, oldest first.
func (r *RingBuffer) LastAtLeast(floor Level, n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := r.length() - 1; i >= 0 && len(out) < n; i-- {
		if e := r.at(i); e.Level.Rank() >= floor.Rank() {
			out = append(out, e)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Stats counts the buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	for i := range r.length() {
		counts[r.at(i).Kind]++
	}
	return counts
}

// Len is the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length()
}

// Cap is the buffer capacity.
func (r *RingBuffer) Cap() int { return len(r.buf) }
