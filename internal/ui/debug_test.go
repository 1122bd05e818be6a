package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/lemure/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if got := debugOverlay(nil, "", 80, 24); got != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", got)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindLoadComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindRedrawComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindRedrawComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindRedrawSuperseded, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindExportError, Time: time.Now()})

	result := debugOverlay(ring, "", 80, 40)

	if !strings.Contains(result, "Session") {
		t.Error("overlay should contain 'Session' header")
	}
	if !strings.Contains(result, "2 complete, 1 superseded, 0 errors") {
		t.Errorf("overlay should show redraw stats, got:\n%s", result)
	}
	if !strings.Contains(result, "0 complete, 1 errors") {
		t.Errorf("overlay should show export stats, got:\n%s", result)
	}
	if !strings.Contains(result, "5 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindNotice, Time: time.Now(), Msg: "loaded run-17"})
	ring.Push(otel.Event{Kind: otel.KindLoadError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindRedrawStart, Time: time.Now(), Seq: 42})

	result := debugOverlay(ring, "", 80, 40)

	for _, want := range []string{"Recent Events", "loaded run-17", "ERR:timeout", "#42"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q, got:\n%s", want, result)
		}
	}
}

func TestDebugOverlayLevelFilter(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindKeyPress, Level: otel.LevelDebug, Time: time.Now(), Msg: "pressed j"})
	ring.Push(otel.Event{Kind: otel.KindLoadComplete, Level: otel.LevelInfo, Time: time.Now(), Msg: "run-17"})
	ring.Push(otel.Event{Kind: otel.KindStatsError, Level: otel.LevelWarn, Time: time.Now(), Err: "busy"})

	all := debugOverlay(ring, "", 80, 40)
	for _, want := range []string{"pressed j", "run-17", "ERR:busy"} {
		if !strings.Contains(all, want) {
			t.Errorf("unfiltered overlay missing %q", want)
		}
	}

	warn := debugOverlay(ring, otel.LevelWarn, 80, 40)
	if strings.Contains(warn, "pressed j") || strings.Contains(warn, "run-17") {
		t.Errorf("warn overlay lists lower levels:\n%s", warn)
	}
	if !strings.Contains(warn, "ERR:busy") || !strings.Contains(warn, "warn+") {
		t.Errorf("warn overlay = \n%s", warn)
	}
	// Counters cover every buffered event regardless of the filter.
	if !strings.Contains(warn, "1 complete, 0 errors") {
		t.Errorf("warn overlay should keep load counters, got:\n%s", warn)
	}
}

func TestNextLevel(t *testing.T) {
	got := []otel.Level{""}
	for range 4 {
		got = append(got, nextLevel(got[len(got)-1]))
	}
	want := []otel.Level{"", otel.LevelInfo, otel.LevelWarn, otel.LevelError, otel.LevelDebug}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("level cycle = %v, want %v", got, want)
		}
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for range 30 {
		ring.Push(otel.Event{Kind: otel.KindKeyPress, Time: time.Now()})
	}
	result := debugOverlay(ring, "", 80, 12)
	if n := strings.Count(result, "ui.key"); n >= 20 {
		t.Errorf("overlay should be cut to the height, got %d event lines", n)
	}
}

func TestDebugToggle(t *testing.T) {
	app, _, _ := newTestApp(t)

	app = press(app, "D")
	if !peek(app).showLog {
		t.Fatal("D should open the log panel")
	}
	if !strings.Contains(app.View(), "[LOG]") {
		t.Error("log view should show its status bar")
	}

	// Keys other than close are swallowed while the panel is open.
	app = press(app, "j")
	if !peek(app).showLog {
		t.Error("j should not close the log panel")
	}

	app = press(app, "v")
	if peek(app).logLevel != otel.LevelInfo {
		t.Errorf("v should raise the level filter, got %q", peek(app).logLevel)
	}
	if !strings.Contains(app.View(), "level info") {
		t.Error("status bar should show the level filter")
	}

	app = update(app, tea.KeyMsg{Type: tea.KeyEsc})
	if peek(app).showLog {
		t.Error("esc should close the log panel")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{3 * time.Minute, "3m"},
		{-time.Second, "0ms"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"A-Te", 10, "A-Te"},
		{"Évaporateur", 5, "Évap…"},
		{"°C°C", 1, "°"},
		{"abc", -3, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.s, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}
