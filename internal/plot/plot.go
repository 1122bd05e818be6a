// Package plot owns the range-preserving redraw cycle.
//
// The Controller never draws anything itself. It talks to a Chart, which
// renders traces with replace semantics, reports its visible window as raw
// axis values and emits viewport events to subscribers. TermChart is the
// terminal implementation.
package plot

import (
	"github.com/abelbrown/lemure/internal/span"
)

// Trace is one series ready for the chart. Y may contain NaN for gaps.
type Trace struct {
	Code string
	Name string
	Unit string
	T    []int64 // Unix milliseconds, ascending
	Y    []float64
}

// Layout carries everything about a render that is not series data.
type Layout struct {
	Full       span.Range // full dataset span, the X domain
	View       span.Range // initial visible window
	ShowLegend bool
	Revision   string // identifies the dataset; a new value means new data
}

// ViewportEvent reports a user-driven change of the visible window. X0 and X1
// are raw axis values (date strings, numbers or times) and must go through
// ParseAxisValue. Autorange means "reset to the full range".
type ViewportEvent struct {
	X0, X1    any
	Autorange bool
}

// Chart is the charting collaborator.
type Chart interface {
	// Render replaces everything currently drawn.
	Render(traces []Trace, layout Layout) error
	// VisibleRange returns the raw bounds of the current view, ok=false
	// when nothing has been rendered yet.
	VisibleRange() (x0, x1 any, ok bool)
	// Subscribe registers fn for viewport events. The returned func removes
	// it again and is safe to call more than once.
	Subscribe(fn func(ViewportEvent)) (unsubscribe func())
}
