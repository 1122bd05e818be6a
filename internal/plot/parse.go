package plot

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/lemure/internal/span"
)

// axisLayouts are tried in order against date strings. Strings without a
// zone are read in local time, matching how the chart formats them.
var axisLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseAxisValue converts a raw axis value into Unix milliseconds. It accepts
// numbers (already milliseconds), time.Time and date strings such as
// "2024-03-01 10:00:00.250". Anything unparsable yields NaN, never an error.
func ParseAxisValue(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case time.Time:
		if x.IsZero() {
			return math.NaN()
		}
		return float64(x.UnixMilli())
	case string:
		return parseAxisString(x)
	}
	return math.NaN()
}

func parseAxisString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if strings.Contains(s, " ") && !strings.Contains(s, "T") {
		s = strings.Replace(s, " ", "T", 1)
	}
	if ms, ok := parseLayouts(s); ok {
		return ms
	}
	// Last attempt: drop fractional seconds.
	if i := strings.LastIndex(s, "."); i > 0 && strings.Contains(s, "T") {
		if ms, ok := parseLayouts(s[:i]); ok {
			return ms
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return math.NaN()
}

func parseLayouts(s string) (float64, bool) {
	for _, layout := range axisLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	return 0, false
}

// ParseRange parses a pair of raw axis values into a normalized range.
// ok is false when either side is not a finite number.
func ParseRange(x0, x1 any) (span.Range, bool) {
	a, b := ParseAxisValue(x0), ParseAxisValue(x1)
	if !finite(a) || !finite(b) {
		return span.Range{}, false
	}
	return span.New(int64(math.Round(a)), int64(math.Round(b))), true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// FormatAxisValue renders ms the way TermChart reports its axis bounds:
// local time with its offset, so the hour repeated at a DST change still
// parses back to the same instant.
func FormatAxisValue(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02T15:04:05.000Z07:00")
}
