package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
)

// ErrNothingToDraw is returned when no trace has two finite samples.
var ErrNothingToDraw = errors.New("nothing to draw")

// RenderPNG draws traces over window as a PNG image. NaN samples are
// skipped. Series colors follow the terminal chart palette.
func RenderPNG(w io.Writer, traces []plot.Trace, window span.Range, width, height int) error {
	series := make([]chart.Series, 0, len(traces))
	for i, tr := range traces {
		xs, ys := finitePoints(tr, window)
		if len(xs) < 2 {
			continue
		}
		name := tr.Code
		if tr.Unit != "" {
			name += " [" + tr.Unit + "]"
		}
		col := xtermColor(string(plot.ColorFor(i)))
		series = append(series, chart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
		})
	}
	if len(series) == 0 {
		return ErrNothingToDraw
	}

	layout := "15:04:05"
	if window.Duration() > 24*time.Hour {
		layout = "01-02 15:04"
	}
	ch := chart.Chart{
		Width:      max(width, 320),
		Height:     max(height, 200),
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 48}},
		XAxis: chart.XAxis{
			ValueFormatter: timeFormatter(layout),
		},
		Series: series,
	}
	if !window.IsZero() {
		ch.XAxis.Range = &chart.ContinuousRange{
			Min: float64(window.Start().UnixNano()),
			Max: float64(window.End().UnixNano()),
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func finitePoints(tr plot.Trace, window span.Range) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(tr.T))
	ys := make([]float64, 0, len(tr.T))
	for i, t := range tr.T {
		if i >= len(tr.Y) {
			break
		}
		v := tr.Y[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !window.IsZero() && (t < window.StartMs || t > window.EndMs) {
			continue
		}
		xs = append(xs, time.UnixMilli(t))
		ys = append(ys, v)
	}
	return xs, ys
}

// timeFormatter labels time axis ticks, which go-chart passes as Unix
// nanoseconds.
func timeFormatter(layout string) chart.ValueFormatter {
	return func(v interface{}) string {
		switch x := v.(type) {
		case float64:
			return time.Unix(0, int64(x)).Format(layout)
		case time.Time:
			return x.Format(layout)
		}
		return ""
	}
}

var ansi16 = []drawing.Color{
	{R: 0, G: 0, B: 0, A: 255}, {R: 128, G: 0, B: 0, A: 255},
	{R: 0, G: 128, B: 0, A: 255}, {R: 128, G: 128, B: 0, A: 255},
	{R: 0, G: 0, B: 128, A: 255}, {R: 128, G: 0, B: 128, A: 255},
	{R: 0, G: 128, B: 128, A: 255}, {R: 192, G: 192, B: 192, A: 255},
	{R: 128, G: 128, B: 128, A: 255}, {R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 255, B: 0, A: 255}, {R: 255, G: 255, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255}, {R: 255, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 255, A: 255}, {R: 255, G: 255, B: 255, A: 255},
}

// xtermColor maps an xterm-256 palette index (as used by lipgloss) to RGB.
// Anything else is read as a hex color.
func xtermColor(c string) drawing.Color {
	n, err := strconv.Atoi(c)
	if err != nil || n < 0 || n > 255 {
		return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
	}
	switch {
	case n < 16:
		return ansi16[n]
	case n < 232:
		n -= 16
		level := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return drawing.Color{R: level(n / 36), G: level(n / 6 % 6), B: level(n % 6), A: 255}
	default:
		g := uint8(8 + (n-232)*10)
		return drawing.Color{R: g, G: g, B: g, A: 255}
	}
}
