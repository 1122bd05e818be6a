package plot

import (
	"errors"
	"fmt"

	"github.com/abelbrown/lemure/internal/span"
)

var (
	// ErrNoChannels is returned by Begin when nothing is selected.
	ErrNoChannels = errors.New("no channels selected")
	// ErrNoData is returned by Begin before any dataset is loaded.
	ErrNoData = errors.New("no test loaded")
	// ErrSuperseded is returned by Complete for a redraw that a newer
	// Begin has replaced.
	ErrSuperseded = errors.New("redraw superseded")
)

// Request describes one redraw cycle between Begin and Complete. The fetch it
// implies always covers Full, never just Desired, so later pans and zooms do
// not need a refetch.
type Request struct {
	Seq       uint64
	Codes     []string
	Full      span.Range
	Desired   span.Range
	Step      int // explicit stride, 0 when MaxPoints is used
	MaxPoints int // point budget for a server-chosen stride, 0 when Step is used
	viewGen   uint64
}

// Controller runs capture, fetch, render, re-attach and reconcile against a
// Chart. It is driven from the UI event loop only and needs no locking.
type Controller struct {
	chart       Chart
	unsubscribe func()

	full       span.Range
	remembered span.Range
	forceReset bool
	revision   string

	seq     uint64
	viewGen uint64
	busy    bool

	showLegend bool
	onViewport func(span.Range)
}

// NewController returns a controller drawing into chart.
func NewController(chart Chart) *Controller {
	return &Controller{chart: chart}
}

// OnViewport sets the hook called after every user viewport change with the
// new remembered window.
func (c *Controller) OnViewport(fn func(span.Range)) { c.onViewport = fn }

// SetShowLegend controls the legend on the next render.
func (c *Controller) SetShowLegend(v bool) { c.showLegend = v }

// ShowLegend reports the legend setting.
func (c *Controller) ShowLegend() bool { return c.showLegend }

// Reset prepares for a freshly loaded dataset: the next redraw shows the full
// span no matter what window was visible before, and any redraw still in
// flight for the old data is superseded.
func (c *Controller) Reset(full span.Range, revision string) {
	c.full = full.Normalize()
	c.remembered = c.full
	c.forceReset = true
	c.revision = revision
	c.seq++
	c.busy = false
}

// Full is the dataset span.
func (c *Controller) Full() span.Range { return c.full }

// Remembered is the last known visible window.
func (c *Controller) Remembered() span.Range { return c.remembered }

// ForceReset reports whether the next redraw will reset to the full span.
func (c *Controller) ForceReset() bool { return c.forceReset }

// Busy reports whether a redraw is between Begin and Complete.
func (c *Controller) Busy() bool { return c.busy }

// Visible reads the chart's current window, ok=false when the chart has none
// or reports something unparsable.
func (c *Controller) Visible() (span.Range, bool) {
	if c.chart == nil {
		return span.Range{}, false
	}
	x0, x1, ok := c.chart.VisibleRange()
	if !ok {
		return span.Range{}, false
	}
	return ParseRange(x0, x1)
}

// Window is the range exports and range stats operate on: the visible window,
// else the remembered one, else the full span. While a reset is pending the
// chart still shows the previous dataset, so the full span wins.
func (c *Controller) Window() span.Range {
	if c.forceReset {
		return c.full
	}
	if r, ok := c.Visible(); ok {
		return r
	}
	if !c.remembered.IsZero() {
		return c.remembered
	}
	return c.full
}

// Begin captures the window to restore and returns the request to fetch.
// Exactly one of step and maxPoints should be non-zero.
func (c *Controller) Begin(codes []string, step, maxPoints int) (Request, error) {
	if c.full.IsZero() {
		return Request{}, ErrNoData
	}
	if len(codes) == 0 {
		return Request{}, ErrNoChannels
	}
	c.seq++
	c.busy = true
	return Request{
		Seq:       c.seq,
		Codes:     append([]string(nil), codes...),
		Full:      c.full,
		Desired:   c.capture(),
		Step:      step,
		MaxPoints: maxPoints,
		viewGen:   c.viewGen,
	}, nil
}

// Abort clears the busy flag after the fetch for the newest request was
// lost. A response that still arrives for it is accepted by Complete.
func (c *Controller) Abort() { c.busy = false }

// capture picks the window the next render should show.
func (c *Controller) capture() span.Range {
	if c.forceReset {
		return c.full
	}
	if r, ok := c.Visible(); ok {
		return r
	}
	if !c.remembered.IsZero() {
		return c.remembered
	}
	return c.full
}

// Complete finishes the cycle started by Begin. On fetchErr nothing but the
// busy flag changes and the error is returned wrapped. A request that has
// been superseded is dropped with ErrSuperseded.
func (c *Controller) Complete(req Request, traces []Trace, fetchErr error) error {
	if req.Seq != c.seq {
		return ErrSuperseded
	}
	c.busy = false
	if fetchErr != nil {
		return fmt.Errorf("fetch series: %w", fetchErr)
	}

	desired := req.Desired
	// The user zoomed while the fetch was in flight: honour the newer window.
	if !c.forceReset && req.viewGen != c.viewGen && !c.remembered.IsZero() {
		desired = c.remembered
	}
	desired = desired.Clamp(c.full)

	layout := Layout{
		Full:       c.full,
		View:       desired,
		ShowLegend: c.showLegend,
		Revision:   c.revision,
	}
	if err := c.chart.Render(traces, layout); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	c.attach()

	if r, ok := c.Visible(); ok {
		c.remembered = r
	} else if !desired.IsZero() {
		c.remembered = desired
	} else {
		c.remembered = c.full
	}
	c.forceReset = false
	return nil
}

// attach swaps the viewport subscription so exactly one is ever registered.
func (c *Controller) attach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.unsubscribe = c.chart.Subscribe(c.handleViewport)
}

// Detach removes the viewport subscription.
func (c *Controller) Detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Controller) handleViewport(ev ViewportEvent) {
	if ev.Autorange {
		c.remembered = c.full
	} else {
		r, ok := ParseRange(ev.X0, ev.X1)
		if !ok {
			return
		}
		c.remembered = r
	}
	c.viewGen++
	if c.onViewport != nil {
		c.onViewport(c.remembered)
	}
}
