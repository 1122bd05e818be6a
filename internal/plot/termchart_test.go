package plot

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/lemure/internal/span"
)

func sampleTraces(start time.Time, n int) []Trace {
	tr := Trace{Code: "A-Tc", Unit: "°C"}
	for i := 0; i < n; i++ {
		tr.T = append(tr.T, start.Add(time.Duration(i)*time.Second).UnixMilli())
		tr.Y = append(tr.Y, math.Sin(float64(i)/10)*20)
	}
	tr.Y[3] = math.NaN()
	return []Trace{tr}
}

func TestTermChartEmptyView(t *testing.T) {
	c := NewTermChart(40, 10)
	if _, _, ok := c.VisibleRange(); ok {
		t.Error("empty chart must not report a visible range")
	}
	if !strings.Contains(c.View(), "no data") {
		t.Error("empty chart should say so")
	}
	if err := c.Render(nil, Layout{}); err == nil {
		t.Error("render with zero span should fail")
	}
}

func TestTermChartZoomAndAutorange(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	full := span.New(start.UnixMilli(), start.Add(200*time.Second).UnixMilli())
	c := NewTermChart(60, 12)
	if err := c.Render(sampleTraces(start, 201), Layout{Full: full, View: full, ShowLegend: true}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, _, ok := c.VisibleRange(); !ok {
		t.Fatal("rendered chart should report a visible range")
	}
	if !strings.Contains(c.View(), "A-Tc [°C]") {
		t.Error("legend missing")
	}

	var events []ViewportEvent
	unsub := c.Subscribe(func(ev ViewportEvent) { events = append(events, ev) })
	if c.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", c.Subscribers())
	}

	c.Zoom(0.5)
	if len(events) != 1 || events[0].Autorange {
		t.Fatalf("zoom events = %+v", events)
	}
	r, ok := ParseRange(events[0].X0, events[0].X1)
	if !ok {
		t.Fatalf("zoom event not parsable: %+v", events[0])
	}
	if r.DurationMs() >= full.DurationMs() || !full.Contains(r) {
		t.Errorf("zoomed window %+v not inside %+v", r, full)
	}

	c.Autorange()
	if len(events) != 2 || !events[1].Autorange {
		t.Errorf("autorange events = %+v", events)
	}

	unsub()
	unsub()
	if c.Subscribers() != 0 {
		t.Errorf("subscribers after unsubscribe = %d", c.Subscribers())
	}
}

func TestYBounds(t *testing.T) {
	lo, hi := yBounds([]Trace{{Y: []float64{1, math.NaN(), 11, math.Inf(1)}}})
	if lo != 0.5 || hi != 11.5 {
		t.Errorf("yBounds = %v, %v", lo, hi)
	}
	lo, hi = yBounds([]Trace{{Y: []float64{5, 5}}})
	if lo >= 5 || hi <= 5 {
		t.Errorf("flat series should be padded, got %v, %v", lo, hi)
	}
	if lo, hi = yBounds(nil); lo != 0 || hi != 1 {
		t.Errorf("empty = %v, %v", lo, hi)
	}
}

func TestShiftInto(t *testing.T) {
	outer := span.New(100, 200)
	tests := []struct {
		in, want span.Range
	}{
		{span.New(90, 120), span.New(100, 130)},
		{span.New(190, 220), span.New(170, 200)},
		{span.New(120, 150), span.New(120, 150)},
		{span.New(0, 500), outer},
	}
	for _, tt := range tests {
		if got := shiftInto(tt.in, outer); got != tt.want {
			t.Errorf("shiftInto(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
