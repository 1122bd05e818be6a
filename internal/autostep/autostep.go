// Package autostep picks the decimation stride that keeps a plot near its
// point budget, and caches the exact point count of the visible range.
package autostep

import (
	"math"

	"github.com/abelbrown/lemure/internal/span"
)

const (
	// DefaultTarget is the default point budget per series.
	DefaultTarget = 5000
	// MaxStep caps the manual stride the UI will accept.
	MaxStep = 1_000_000
)

// Settings is the user-controlled part of the step logic.
type Settings struct {
	Enabled bool `json:"step_auto"`
	Target  int  `json:"step_target"`
	Manual  int  `json:"step"`
}

// DefaultSettings has auto-step on with the default budget.
func DefaultSettings() Settings {
	return Settings{Enabled: true, Target: DefaultTarget, Manual: 1}
}

// Sanitize clamps Target and Manual into their valid ranges.
func (s Settings) Sanitize() Settings {
	if s.Target <= 0 {
		s.Target = DefaultTarget
	}
	if s.Manual < 1 {
		s.Manual = 1
	}
	if s.Manual > MaxStep {
		s.Manual = MaxStep
	}
	return s
}

// Estimate linearly interpolates the number of points inside r from the
// dataset totals. Never returns less than 1.
func Estimate(r, full span.Range, totalPoints int) int {
	rangeDur := max(int64(1), r.DurationMs())
	fullDur := max(int64(1), full.DurationMs())
	est := math.Round(float64(totalPoints) * float64(rangeDur) / float64(fullDur))
	return max(1, int(est))
}

// Compute is the stride that brings points down to at most target.
func Compute(points, target int) int {
	if target <= 0 {
		target = DefaultTarget
	}
	points = max(1, points)
	return max(1, (points+target-1)/target)
}

// Decimated is the number of points left after taking every step-th sample.
func Decimated(points, step int) int {
	if points <= 0 {
		return 0
	}
	step = max(1, step)
	return (points + step - 1) / step
}

// Result is a computed step plus the point count it was derived from.
type Result struct {
	Step   int
	Points int
	Exact  bool // Points came from the range-stats cache, not an estimate
}

// Effective resolves the step for r. An exact cache entry for exactly r is
// preferred over the estimate. With auto-step disabled the manual stride is
// returned but Points is still filled in for the info panel.
func Effective(s Settings, r, full span.Range, totalPoints int, cache *Cache) Result {
	s = s.Sanitize()
	res := Result{Points: Estimate(r, full, totalPoints)}
	if cache != nil {
		if st, ok := cache.Lookup(r); ok {
			res.Points, res.Exact = max(1, st.Points), true
		}
	}
	if s.Enabled {
		res.Step = Compute(res.Points, s.Target)
	} else {
		res.Step = s.Manual
	}
	return res
}
