package channel

import "slices"

// SortMode selects how the working order is derived from file order.
type SortMode string

const (
	ModeFile     SortMode = "file"
	ModeCustom   SortMode = "custom"
	ModePriority SortMode = "priority"
	ModeNatural  SortMode = "natural"
	ModeLabel    SortMode = "label"
	ModeUnit     SortMode = "unit"
)

// Modes lists every sort mode in the order the UI cycles through them.
var Modes = []SortMode{ModeFile, ModeCustom, ModePriority, ModeNatural, ModeLabel, ModeUnit}

// ParseSortMode returns the mode named s. Unknown names map to ModeFile.
func ParseSortMode(s string) (SortMode, bool) {
	m := SortMode(s)
	if slices.Contains(Modes, m) {
		return m, true
	}
	return ModeFile, false
}

// Next returns the mode after m in Modes, wrapping around.
func (m SortMode) Next() SortMode {
	i := slices.Index(Modes, m)
	return Modes[(i+1)%len(Modes)]
}

// Title is the short name shown in the status bar.
func (m SortMode) Title() string {
	switch m {
	case ModeCustom:
		return "custom"
	case ModePriority:
		return "priority"
	case ModeNatural:
		return "A2<A10"
	case ModeLabel:
		return "label"
	case ModeUnit:
		return "unit"
	default:
		return "file"
	}
}

// WorkingOrder derives the full ordering for mode. file is never modified and
// the result is always a permutation of it.
func WorkingOrder(mode SortMode, file []Channel, saved []string) []Channel {
	switch mode {
	case ModeCustom:
		return CustomSaved(file, saved)
	case ModePriority:
		return Priority(file, DefaultPriority)
	case ModeNatural:
		return Natural(file)
	case ModeLabel:
		return ByLabel(file)
	case ModeUnit:
		return ByUnitThenCode(file)
	default:
		return slices.Clone(file)
	}
}
