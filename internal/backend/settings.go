package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RowMark highlights template rows whose temperature exceeds ThresholdT.
type RowMark struct {
	ThresholdT float64 `json:"threshold_T" yaml:"threshold_T"`
	Color      string  `json:"color" yaml:"color"`
	Intensity  int     `json:"intensity" yaml:"intensity"`
}

// Mark colors a pressure column; a nil Threshold disables it.
type Mark struct {
	Threshold *float64 `json:"threshold" yaml:"threshold"`
	Color     string   `json:"color" yaml:"color"`
}

// ScaleColors are the fills for the three scale stops.
type ScaleColors struct {
	Min string `json:"min" yaml:"min"`
	Opt string `json:"opt" yaml:"opt"`
	Max string `json:"max" yaml:"max"`
}

// Scale is a three-stop color scale applied to a template column.
type Scale struct {
	Min    float64     `json:"min" yaml:"min"`
	Opt    float64     `json:"opt" yaml:"opt"`
	Max    float64     `json:"max" yaml:"max"`
	Colors ScaleColors `json:"colors" yaml:"colors"`
}

// StyleSettings controls the coloring of template exports.
type StyleSettings struct {
	RowMark       RowMark          `json:"row_mark" yaml:"row_mark"`
	DischargeMark Mark             `json:"discharge_mark" yaml:"discharge_mark"`
	SuctionMark   Mark             `json:"suction_mark" yaml:"suction_mark"`
	Scales        map[string]Scale `json:"scales" yaml:"scales"`
}

// ScaleNames are the template columns that carry a color scale.
var ScaleNames = []string{"W", "X", "Y"}

// DefaultStyle returns the server's built-in style.
func DefaultStyle() StyleSettings {
	scales := make(map[string]Scale, len(ScaleNames))
	for _, n := range ScaleNames {
		scales[n] = Scale{Min: -1, Opt: 1, Max: 2, Colors: ScaleColors{Min: "#1CBCF2", Opt: "#00FF00", Max: "#F3919B"}}
	}
	return StyleSettings{
		RowMark:       RowMark{ThresholdT: 150, Color: "#EAD706", Intensity: 100},
		DischargeMark: Mark{Color: "#FFC000"},
		SuctionMark:   Mark{Color: "#00B0F0"},
		Scales:        scales,
	}
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeColor returns s as upper-case "#RRGGBB", or def when s is not a
// six-digit hex color. The leading "#" is optional on input.
func NormalizeColor(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !hexColor.MatchString(s) {
		return def
	}
	return strings.ToUpper(s)
}

// Normalize fixes colors, clamps intensity to 0..100, keeps the scale stops
// strictly increasing and fills in missing scales.
func (s StyleSettings) Normalize() StyleSettings {
	s.RowMark.Color = NormalizeColor(s.RowMark.Color, "#FFF2CC")
	s.RowMark.Intensity = min(max(s.RowMark.Intensity, 0), 100)
	s.DischargeMark.Color = NormalizeColor(s.DischargeMark.Color, "#FFC000")
	s.SuctionMark.Color = NormalizeColor(s.SuctionMark.Color, "#00B0F0")

	def := DefaultStyle().Scales
	out := make(map[string]Scale, len(ScaleNames))
	for _, n := range ScaleNames {
		sc, ok := s.Scales[n]
		if !ok {
			sc = def[n]
		}
		if sc.Min >= sc.Opt {
			sc.Min = sc.Opt - 1
		}
		if sc.Opt >= sc.Max {
			sc.Max = sc.Opt + 1
		}
		sc.Colors = ScaleColors{
			Min: NormalizeColor(sc.Colors.Min, "#0000FF"),
			Opt: NormalizeColor(sc.Colors.Opt, "#00FF00"),
			Max: NormalizeColor(sc.Colors.Max, "#FF0000"),
		}
		out[n] = sc
	}
	s.Scales = out
	return s
}

// Style fetches the current style settings.
func (c *Client) Style(ctx context.Context) (StyleSettings, error) {
	resp := struct {
		Settings StyleSettings `json:"settings"`
	}{Settings: DefaultStyle()}
	if err := c.call(ctx, "GET", "/api/settings", nil, nil, &resp); err != nil {
		return StyleSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return resp.Settings.Normalize(), nil
}

// SaveStyle normalizes and stores s, returning what the server kept.
func (c *Client) SaveStyle(ctx context.Context, s StyleSettings) (StyleSettings, error) {
	s = s.Normalize()
	resp := struct {
		Settings StyleSettings `json:"settings"`
	}{Settings: s}
	if err := c.call(ctx, "POST", "/api/settings", nil, map[string]any{"settings": s}, &resp); err != nil {
		return StyleSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return resp.Settings.Normalize(), nil
}
