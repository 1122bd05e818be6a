// Package span is the millisecond time window shared by the plot, the
// auto-step controller and exports.
package span

import (
	"fmt"
	"time"
)

// Range is a closed window [StartMs, EndMs] in Unix milliseconds.
// Constructors always normalize so StartMs <= EndMs.
type Range struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// New returns the normalized range between a and b.
func New(a, b int64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{StartMs: a, EndMs: b}
}

// Normalize returns r with its bounds swapped if needed.
func (r Range) Normalize() Range { return New(r.StartMs, r.EndMs) }

// IsZero reports whether r is the zero value, meaning "no range known".
func (r Range) IsZero() bool { return r.StartMs == 0 && r.EndMs == 0 }

// DurationMs is EndMs-StartMs.
func (r Range) DurationMs() int64 { return r.EndMs - r.StartMs }

// Duration is the length of r.
func (r Range) Duration() time.Duration { return time.Duration(r.DurationMs()) * time.Millisecond }

// Start returns StartMs as local time.
func (r Range) Start() time.Time { return time.UnixMilli(r.StartMs) }

// End returns EndMs as local time.
func (r Range) End() time.Time { return time.UnixMilli(r.EndMs) }

// Contains reports whether o lies entirely within r.
func (r Range) Contains(o Range) bool {
	return o.StartMs >= r.StartMs && o.EndMs <= r.EndMs
}

// Clamp limits r to the bounds of outer. A range that falls completely
// outside outer collapses onto the nearest edge.
func (r Range) Clamp(outer Range) Range {
	s, e := r.StartMs, r.EndMs
	s = max(s, outer.StartMs)
	e = min(e, outer.EndMs)
	if s > e {
		if r.StartMs > outer.EndMs {
			return Range{StartMs: outer.EndMs, EndMs: outer.EndMs}
		}
		return Range{StartMs: outer.StartMs, EndMs: outer.StartMs}
	}
	return Range{StartMs: s, EndMs: e}
}

// WithinTolerance reports whether both edges of r and o differ by at most
// tolMs. Chart adapters round view bounds, so exact equality is too strict.
func (r Range) WithinTolerance(o Range, tolMs int64) bool {
	return abs(r.StartMs-o.StartMs) <= tolMs && abs(r.EndMs-o.EndMs) <= tolMs
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

const layout = "2006-01-02 15:04:05"

// String formats r as "2024-03-01 10:00:00  →  2024-03-01 12:30:00  (2h 30m 0s)".
// The zero range renders as "—".
func (r Range) String() string {
	if r.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%s  →  %s  (%s)",
		r.Start().Format(layout), r.End().Format(layout), FormatDuration(r.Duration()))
}

// FormatDuration renders d rounded to the second as "Xh Ym Zs". All three
// units are always present.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, (total%3600)/60, total%60)
}
