// Package filter provides the display filters for the channel list.
// All functions are simple: []Channel in, []Channel out. No side effects;
// the working order passed in is never modified.
package filter

import (
	"slices"
	"strings"

	"github.com/abelbrown/lemure/internal/channel"
)

// OtherPrefix groups codes that carry no "-" separated prefix.
const OtherPrefix = "Other"

// ChipKind is the category a chip filters on.
type ChipKind string

const (
	ChipPrefix ChipKind = "prefix"
	ChipUnit   ChipKind = "unit"
)

// Chip is a single category filter. At most one chip is active at a time.
type Chip struct {
	Kind  ChipKind
	Value string
}

// Filter is the complete display filter state.
type Filter struct {
	Text         string
	OnlySelected bool
	Chip         *Chip
}

// Active reports whether any filter narrows the list.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Text) != "" || f.OnlySelected || f.Chip != nil
}

// Describe returns a short human description of the active filters.
func (f Filter) Describe() string {
	var parts []string
	if t := strings.TrimSpace(f.Text); t != "" {
		parts = append(parts, "/"+t)
	}
	if f.Chip != nil {
		parts = append(parts, string(f.Chip.Kind)+":"+f.Chip.Value)
	}
	if f.OnlySelected {
		parts = append(parts, "only selected")
	}
	return strings.Join(parts, " ")
}

// ToggleChip activates c, or clears it when c is already the active chip.
// Activating a chip replaces whatever chip was active before.
func (f *Filter) ToggleChip(c Chip) {
	if f.Chip != nil && *f.Chip == c {
		f.Chip = nil
		return
	}
	f.Chip = &c
}

// Apply returns the channels of working that pass every active filter, in
// working order. isSelected is consulted only for OnlySelected.
func Apply(working []channel.Channel, f Filter, isSelected func(code string) bool) []channel.Channel {
	if !f.Active() {
		return slices.Clone(working)
	}
	out := make([]channel.Channel, 0, len(working))
	for _, c := range working {
		if f.OnlySelected && (isSelected == nil || !isSelected(c.Code)) {
			continue
		}
		if f.Chip != nil && !MatchChip(c, *f.Chip) {
			continue
		}
		if !MatchText(c, f.Text) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ByText keeps channels whose code, label or unit contains q (case-insensitive).
func ByText(chs []channel.Channel, q string) []channel.Channel {
	return Apply(chs, Filter{Text: q}, nil)
}

// ByChip keeps channels matching c.
func ByChip(chs []channel.Channel, c Chip) []channel.Channel {
	return Apply(chs, Filter{Chip: &c}, nil)
}

// MatchText reports whether q is a substring of the channel's haystack.
// An empty query matches everything.
func MatchText(c channel.Channel, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	hay := strings.ToLower(c.Code + " " + c.Label + " " + c.Unit)
	return strings.Contains(hay, q)
}

// MatchChip reports whether c belongs to the chip's category.
func MatchChip(c channel.Channel, chip Chip) bool {
	switch chip.Kind {
	case ChipPrefix:
		if chip.Value == OtherPrefix {
			return !strings.Contains(c.Code, "-")
		}
		return strings.HasPrefix(strings.ToLower(c.Code), strings.ToLower(chip.Value))
	case ChipUnit:
		return strings.ToLower(c.Unit) == strings.ToLower(chip.Value)
	}
	return true
}

// PrefixOf returns the group prefix of a code: everything before the first
// "-", or OtherPrefix when there is none.
func PrefixOf(code string) string {
	if i := strings.Index(code, "-"); i > 0 {
		return code[:i]
	}
	return OtherPrefix
}

// Chips derives the available chips from the loaded channels: prefixes in
// natural order first, then units in first-seen order.
func Chips(chs []channel.Channel) []Chip {
	var prefixes, units []string
	seenP := make(map[string]bool)
	seenU := make(map[string]bool)
	for _, c := range chs {
		if p := PrefixOf(c.Code); !seenP[p] {
			seenP[p] = true
			prefixes = append(prefixes, p)
		}
		if c.Unit != "" && !seenU[c.Unit] {
			seenU[c.Unit] = true
			units = append(units, c.Unit)
		}
	}
	slices.SortFunc(prefixes, channel.NaturalCompare)

	out := make([]Chip, 0, len(prefixes)+len(units))
	for _, p := range prefixes {
		out = append(out, Chip{Kind: ChipPrefix, Value: p})
	}
	for _, u := range units {
		out = append(out, Chip{Kind: ChipUnit, Value: u})
	}
	return out
}

// NextChip cycles through the chips of one kind: none -> first -> ... -> last
// -> none. It returns nil when the cycle wraps back to no chip.
func NextChip(chips []Chip, kind ChipKind, cur *Chip) *Chip {
	var ofKind []Chip
	for _, c := range chips {
		if c.Kind == kind {
			ofKind = append(ofKind, c)
		}
	}
	if len(ofKind) == 0 {
		return nil
	}
	if cur == nil || cur.Kind != kind {
		c := ofKind[0]
		return &c
	}
	i := slices.Index(ofKind, *cur)
	if i < 0 || i+1 >= len(ofKind) {
		return nil
	}
	c := ofKind[i+1]
	return &c
}
