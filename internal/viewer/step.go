package viewer

import (
	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
)

// StepSettings returns the auto-step settings.
func (s *State) StepSettings() autostep.Settings { return s.step }

// SetStepSettings replaces the auto-step settings.
func (s *State) SetStepSettings(st autostep.Settings) { s.step = st.Sanitize() }

// ToggleAutoStep flips between auto and manual stride.
func (s *State) ToggleAutoStep() { s.step.Enabled = !s.step.Enabled }

// AdjustStep doubles (up) or halves the target in auto mode, or the manual
// stride otherwise.
func (s *State) AdjustStep(up bool) {
	if s.step.Enabled {
		if up {
			s.step.Target *= 2
		} else {
			s.step.Target = max(100, s.step.Target/2)
		}
	} else {
		if up {
			s.step.Manual *= 2
		} else {
			s.step.Manual /= 2
		}
	}
	s.step = s.step.Sanitize()
}

// Effective is the stride for the current window.
func (s *State) Effective() autostep.Result {
	return autostep.Effective(s.step, s.plot.Window(), s.summary.Range(), s.summary.Points, &s.stats)
}

// BeginRedraw starts a redraw of the ordered selection. In auto mode the
// server picks the stride from max_points; in manual mode it gets the stride.
func (s *State) BeginRedraw() (plot.Request, error) {
	step, maxPoints := s.step.Manual, 0
	if s.step.Enabled {
		step, maxPoints = 0, s.step.Target
	}
	return s.plot.Begin(s.Ordered(), step, maxPoints)
}

// CompleteRedraw finishes a redraw started by BeginRedraw.
func (s *State) CompleteRedraw(req plot.Request, traces []plot.Trace, err error) error {
	return s.plot.Complete(req, traces, err)
}

// BeginStats invalidates the range-stats cache and returns the token and the
// range the next request must use.
func (s *State) BeginStats() (uint64, span.Range) {
	return s.stats.Begin(), s.plot.Window().Normalize()
}

// ApplyStats stores st if token is still current.
func (s *State) ApplyStats(token uint64, st autostep.Stats) bool {
	return s.stats.Apply(token, st)
}

// AbortRedraw marks the redraw in flight as lost.
func (s *State) AbortRedraw() { s.plot.Abort() }

// ShowLegend reports the legend setting.
func (s *State) ShowLegend() bool { return s.plot.ShowLegend() }

// ToggleLegend flips the legend for the next render.
func (s *State) ToggleLegend() { s.plot.SetShowLegend(!s.plot.ShowLegend()) }
