package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/lemure/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// logLevels is the cycle of the log panel's level filter.
var logLevels = []otel.Level{otel.LevelDebug, otel.LevelInfo, otel.LevelWarn, otel.LevelError}

// nextLevel returns the level after l in logLevels. The zero level counts
// as debug.
func nextLevel(l otel.Level) otel.Level {
	for i, v := range logLevels {
		if v == l {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return otel.LevelInfo
}

// debugOverlay renders the log panel: request counters and the recent
// events at or above floor. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, floor otel.Level, width, height int) string {
	if ring == nil {
		return ""
	}
	if floor == "" {
		floor = otel.LevelDebug
	}

	stats := ring.Stats()
	recent := ring.LastAtLeast(floor, 20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Session"))
	lines = append(lines, fmt.Sprintf("  Loads:      %d complete, %d errors",
		stats[otel.KindLoadComplete], stats[otel.KindLoadError]))
	lines = append(lines, fmt.Sprintf("  Redraws:    %d complete, %d superseded, %d errors",
		stats[otel.KindRedrawComplete], stats[otel.KindRedrawSuperseded], stats[otel.KindRedrawError]))
	lines = append(lines, fmt.Sprintf("  Stats:      %d applied, %d stale, %d errors",
		stats[otel.KindStatsApplied], stats[otel.KindStatsStale], stats[otel.KindStatsError]))
	lines = append(lines, fmt.Sprintf("  Exports:    %d complete, %d errors",
		stats[otel.KindExportComplete], stats[otel.KindExportError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events ("+string(floor)+"+)"))
	for _, e := range recent {
		ageStr := formatAge(time.Since(e.Time))

		line := fmt.Sprintf("  %6s  %-22s", ageStr, string(e.Kind))
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.Seq != 0 {
			line += fmt.Sprintf("  #%d", e.Seq)
		}
		if st, ok := LevelStyles[string(e.Level)]; ok {
			line = st.Render(line)
		}
		lines = append(lines, line)
	}

	maxHeight := max(1, height-debugPanelChrome)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes shortens s to n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(0, n)])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the log overlay.
func debugStatusBar(floor otel.Level, width int) string {
	if floor == "" {
		floor = otel.LevelDebug
	}
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close  ") +
		StatusBarKey.Render("v") + StatusBarText.Render(":level "+string(floor))
	return StatusBar.Width(width).Render("  [LOG]  " + keys)
}
