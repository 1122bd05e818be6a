// Package selection tracks which channels are selected and the anchor used
// for shift-range selection.
//
// The model works on plain code slices handed in by the caller: the order a
// method needs (display or working) is always an argument, never cached, so
// the model cannot drift from the lists the UI renders.
package selection

import (
	"errors"
	"slices"

	"github.com/abelbrown/lemure/internal/channel"
)

// ErrEmpty is returned by operations that need at least one selected channel.
var ErrEmpty = errors.New("no channels selected")

// Model is a set of selected codes plus an anchor. The zero value is not
// usable; call New.
type Model struct {
	selected map[string]bool
	anchor   string
}

// New returns an empty selection.
func New() *Model {
	return &Model{selected: make(map[string]bool)}
}

// Has reports whether code is selected.
func (m *Model) Has(code string) bool { return m.selected[code] }

// Len is the number of selected codes.
func (m *Model) Len() int { return len(m.selected) }

// Anchor returns the anchor code, or "" when unset.
func (m *Model) Anchor() string { return m.anchor }

// Set replaces the selection with codes. The anchor is left alone unless it
// is no longer selected, in which case it moves to the first code.
func (m *Model) Set(codes []string) {
	m.selected = make(map[string]bool, len(codes))
	for _, c := range codes {
		m.selected[c] = true
	}
	if m.anchor != "" && !m.selected[m.anchor] {
		m.anchor = ""
		if len(codes) > 0 {
			m.anchor = codes[0]
		}
	}
}

// SetAnchor moves the anchor without touching the selection.
func (m *Model) SetAnchor(code string) { m.anchor = code }

// Click applies a list click on code. order is the list as the user sees it
// (the display order); shift ranges are taken from it.
//
//   - shift with an anchor present in order: select the contiguous run between
//     anchor and code, replacing the selection unless ctrl is also held
//   - ctrl: toggle code and make it the anchor
//   - otherwise: select only code and make it the anchor
func (m *Model) Click(order []string, code string, ctrl, shift bool) {
	switch {
	case shift && m.anchor != "":
		a := slices.Index(order, m.anchor)
		b := slices.Index(order, code)
		if !ctrl {
			clear(m.selected)
		}
		if a == -1 || b == -1 {
			m.selected[code] = true
			return
		}
		if a > b {
			a, b = b, a
		}
		for _, c := range order[a : b+1] {
			m.selected[c] = true
		}
	case ctrl:
		if m.selected[code] {
			delete(m.selected, code)
		} else {
			m.selected[code] = true
		}
		m.anchor = code
	default:
		m.Solo(code)
	}
}

// Solo selects exactly code.
func (m *Model) Solo(code string) {
	clear(m.selected)
	m.selected[code] = true
	m.anchor = code
}

// SelectAll selects every code of the working order. Filters never limit it.
func (m *Model) SelectAll(working []string) {
	m.Set(working)
}

// Clear leaves exactly one channel selected: the first of the display order,
// or of the working order when nothing is displayed. With no channels at
// all the selection becomes empty.
func (m *Model) Clear(display, working []string) {
	first := ""
	switch {
	case len(display) > 0:
		first = display[0]
	case len(working) > 0:
		first = working[0]
	}
	if first == "" {
		clear(m.selected)
		m.anchor = ""
		return
	}
	m.Solo(first)
}

// Prune reconciles the selection with a new list of available codes. With
// intersect false the selection is kept verbatim, which is what filter
// toggles want. With intersect true it is reduced to the available codes,
// unless that would leave it empty, in which case it is kept as is.
func (m *Model) Prune(available []string, intersect bool) {
	if !intersect {
		return
	}
	keep := make(map[string]bool, len(m.selected))
	for _, c := range available {
		if m.selected[c] {
			keep[c] = true
		}
	}
	if len(keep) == 0 {
		return
	}
	m.selected = keep
	if !keep[m.anchor] {
		m.anchor = ""
	}
}

// Restrict drops every code not in available, even if nothing remains. Used
// when a new test replaces the channel set outright.
func (m *Model) Restrict(available []string) {
	set := make(map[string]bool, len(available))
	for _, c := range available {
		set[c] = true
	}
	for c := range m.selected {
		if !set[c] {
			delete(m.selected, c)
		}
	}
	if !m.selected[m.anchor] {
		m.anchor = ""
	}
}

// Ordered returns the selected codes in working order. This is the only
// order plots and exports consume, so filters can never reorder them.
func (m *Model) Ordered(working []string) []string {
	out := make([]string, 0, len(m.selected))
	for _, c := range working {
		if m.selected[c] {
			out = append(out, c)
		}
	}
	return out
}

// Default picks the initial selection for a freshly loaded test: up to six
// °C channels, or the first four channels when there are none. The anchor is
// the first channel of the list.
func Default(chs []channel.Channel) []string {
	var out []string
	for _, c := range chs {
		if c.Unit == "°C" {
			out = append(out, c.Code)
			if len(out) == 6 {
				break
			}
		}
	}
	if len(out) == 0 {
		for _, c := range chs[:min(4, len(chs))] {
			out = append(out, c.Code)
		}
	}
	return out
}
