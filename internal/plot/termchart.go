package plot

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/abelbrown/lemure/internal/span"
)

// minViewMs is the narrowest window zooming will produce. The chart's X axis
// has whole-second resolution.
const minViewMs = 2000

var (
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	legendStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Palette is the series color cycle, shared with the channel list markers.
var Palette = []lipgloss.Color{"39", "208", "78", "212", "226", "141", "203", "51", "214", "118"}

// ColorFor returns the palette color for the i-th plotted series.
func ColorFor(i int) lipgloss.Color { return Palette[i%len(Palette)] }

// TermChart renders traces as a braille line chart in the terminal. It is
// the Chart implementation used by the UI.
type TermChart struct {
	model  *timeserieslinechart.Model
	width  int
	height int

	full    span.Range
	traces  []Trace
	legend  bool
	hasData bool

	subs   map[int]func(ViewportEvent)
	nextID int
}

// NewTermChart returns an empty chart of the given size.
func NewTermChart(width, height int) *TermChart {
	return &TermChart{
		width:  max(width, 10),
		height: max(height, 4),
		subs:   make(map[int]func(ViewportEvent)),
	}
}

var _ Chart = (*TermChart)(nil)

// Render replaces the chart contents.
func (c *TermChart) Render(traces []Trace, layout Layout) error {
	if layout.Full.IsZero() {
		return errors.New("render: empty time range")
	}
	c.full = layout.Full.Normalize()
	c.traces = traces
	c.legend = layout.ShowLegend
	c.rebuild()

	view := layout.View
	if view.IsZero() {
		view = c.full
	}
	c.setView(view)
	c.hasData = true
	return nil
}

// rebuild creates a fresh ntcharts model for the current traces and size.
func (c *TermChart) rebuild() {
	lo, hi := yBounds(c.traces)
	minT, maxT := c.axisBounds()

	m := timeserieslinechart.New(c.width, c.chartHeight(),
		timeserieslinechart.WithTimeRange(minT, maxT),
		timeserieslinechart.WithYRange(lo, hi),
		timeserieslinechart.WithAxesStyles(axisStyle, labelStyle),
		timeserieslinechart.WithXLabelFormatter(timeLabelFormatter(c.full)),
		timeserieslinechart.WithYLabelFormatter(func(_ int, v float64) string {
			return strconv.FormatFloat(v, 'f', 1, 64)
		}),
		timeserieslinechart.WithXYSteps(2, 3),
	)
	for i, tr := range c.traces {
		m.SetDataSetStyle(tr.Code, lipgloss.NewStyle().Foreground(ColorFor(i)))
		for j, t := range tr.T {
			if j >= len(tr.Y) || math.IsNaN(tr.Y[j]) {
				continue
			}
			m.PushDataSet(tr.Code, timeserieslinechart.TimePoint{
				Time:  time.UnixMilli(t),
				Value: tr.Y[j],
			})
		}
	}
	c.model = &m
}

// chartHeight leaves room for the legend line.
func (c *TermChart) chartHeight() int {
	if c.legend && len(c.traces) > 0 {
		return max(c.height-1, 3)
	}
	return c.height
}

// axisBounds widens the full span to whole seconds.
func (c *TermChart) axisBounds() (time.Time, time.Time) {
	minS := floorDiv(c.full.StartMs, 1000)
	maxS := -floorDiv(-c.full.EndMs, 1000)
	if maxS <= minS {
		maxS = minS + 1
	}
	return time.Unix(minS, 0), time.Unix(maxS, 0)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (c *TermChart) setView(r span.Range) {
	if c.model == nil {
		return
	}
	minT, maxT := c.axisBounds()
	r = r.Normalize().Clamp(span.New(minT.UnixMilli(), maxT.UnixMilli()))
	if r.DurationMs() < 1000 {
		r.EndMs = min(r.StartMs+1000, maxT.UnixMilli())
		r.StartMs = r.EndMs - 1000
	}
	c.model.SetViewTimeRange(time.UnixMilli(r.StartMs), time.UnixMilli(r.EndMs))
	c.draw()
}

func (c *TermChart) draw() {
	if c.model.Width() > 0 && c.model.Height() > 0 &&
		c.model.GraphWidth() > 0 && c.model.GraphHeight() > 0 {
		c.model.DrawBrailleAll()
	}
}

// view returns the current visible window in milliseconds.
func (c *TermChart) view() span.Range {
	return span.New(
		int64(math.Round(c.model.ViewMinX()*1000)),
		int64(math.Round(c.model.ViewMaxX()*1000)),
	)
}

// VisibleRange reports the view bounds as date strings, the same raw form
// viewport events carry.
func (c *TermChart) VisibleRange() (any, any, bool) {
	if !c.hasData || c.model == nil {
		return nil, nil, false
	}
	v := c.view()
	return FormatAxisValue(v.StartMs), FormatAxisValue(v.EndMs), true
}

// Subscribe registers fn for viewport events.
func (c *TermChart) Subscribe(fn func(ViewportEvent)) func() {
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

// Subscribers is the number of registered viewport listeners.
func (c *TermChart) Subscribers() int { return len(c.subs) }

func (c *TermChart) emit(ev ViewportEvent) {
	for _, fn := range c.subs {
		fn(ev)
	}
}

func (c *TermChart) emitView() {
	v := c.view()
	c.emit(ViewportEvent{X0: FormatAxisValue(v.StartMs), X1: FormatAxisValue(v.EndMs)})
}

// Zoom scales the visible window around its center. factor < 1 zooms in.
// Zooming out past the full span becomes an autorange.
func (c *TermChart) Zoom(factor float64) {
	if !c.hasData || factor <= 0 {
		return
	}
	v := c.view()
	width := int64(float64(v.DurationMs()) * factor)
	if width >= c.full.DurationMs() {
		c.Autorange()
		return
	}
	width = max(width, minViewMs)
	center := v.StartMs + v.DurationMs()/2
	nv := span.New(center-width/2, center-width/2+width)
	c.setView(shiftInto(nv, c.full))
	c.emitView()
}

// Pan moves the visible window by frac of its width. Negative moves left.
func (c *TermChart) Pan(frac float64) {
	if !c.hasData {
		return
	}
	v := c.view()
	d := int64(float64(v.DurationMs()) * frac)
	if d == 0 {
		return
	}
	c.setView(shiftInto(span.New(v.StartMs+d, v.EndMs+d), c.full))
	c.emitView()
}

// Autorange shows the full span and tells subscribers so.
func (c *TermChart) Autorange() {
	if !c.hasData {
		return
	}
	c.setView(c.full)
	c.emit(ViewportEvent{Autorange: true})
}

// shiftInto slides r (without resizing) so it lies inside outer where possible.
func shiftInto(r, outer span.Range) span.Range {
	if r.DurationMs() >= outer.DurationMs() {
		return outer
	}
	if r.StartMs < outer.StartMs {
		d := outer.StartMs - r.StartMs
		return span.New(r.StartMs+d, r.EndMs+d)
	}
	if r.EndMs > outer.EndMs {
		d := r.EndMs - outer.EndMs
		return span.New(r.StartMs-d, r.EndMs-d)
	}
	return r
}

// Resize changes the chart size, keeping data and view.
func (c *TermChart) Resize(width, height int) {
	c.width, c.height = max(width, 10), max(height, 4)
	if !c.hasData {
		return
	}
	v := c.view()
	c.rebuild()
	c.setView(v)
}

// View renders the chart and, when enabled, a legend line.
func (c *TermChart) View() string {
	if !c.hasData || c.model == nil {
		return lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center,
			labelStyle.Render("no data"))
	}
	out := c.model.View()
	if c.legend && len(c.traces) > 0 {
		out += "\n" + c.legendLine()
	}
	return out
}

func (c *TermChart) legendLine() string {
	parts := make([]string, 0, len(c.traces))
	for i, tr := range c.traces {
		name := tr.Code
		if tr.Unit != "" {
			name += " [" + tr.Unit + "]"
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorFor(i)).Render("━ "+name))
	}
	return legendStyle.MaxWidth(c.width).Render(strings.Join(parts, "  "))
}

// yBounds fits the Y axis to every finite sample, padded by 5%.
func yBounds(traces []Trace) (float64, float64) {
	var vals []float64
	for _, tr := range traces {
		for _, v := range tr.Y {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return 0, 1
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if lo == hi {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// timeLabelFormatter picks a tick label layout from the span length.
func timeLabelFormatter(full span.Range) func(int, float64) string {
	layout := "15:04:05"
	if full.Duration() > 24*time.Hour {
		layout = "01-02 15:04"
	}
	return func(_ int, v float64) string {
		return time.Unix(int64(v), 0).Format(layout)
	}
}
