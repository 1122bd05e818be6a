package viewer

import (
	"github.com/abelbrown/lemure/internal/filter"
)

// Selected reports whether code is selected.
func (s *State) Selected(code string) bool { return s.sel.Has(code) }

// SelectedCount is the size of the selection.
func (s *State) SelectedCount() int { return s.sel.Len() }

// Anchor is the shift-range anchor.
func (s *State) Anchor() string { return s.sel.Anchor() }

// Ordered is the selection in working order: what gets plotted and exported.
func (s *State) Ordered() []string { return s.sel.Ordered(s.WorkingCodes()) }

// Click applies a list click. Shift ranges follow the display order.
func (s *State) Click(code string, ctrl, shift bool) {
	if _, ok := s.meta[code]; !ok {
		return
	}
	s.sel.Click(s.DisplayCodes(), code, ctrl, shift)
}

// Solo selects exactly code.
func (s *State) Solo(code string) {
	if _, ok := s.meta[code]; !ok {
		return
	}
	s.sel.Solo(code)
}

// SelectAll selects every channel, including ones hidden by a filter.
func (s *State) SelectAll() { s.sel.SelectAll(s.WorkingCodes()) }

// Clear leaves only the first displayed channel selected.
func (s *State) Clear() { s.sel.Clear(s.DisplayCodes(), s.WorkingCodes()) }

// SetSelection replaces the selection with the codes that exist. The anchor
// becomes the first of them. It returns the number of codes kept.
func (s *State) SetSelection(codes []string) int {
	codes = s.existing(codes)
	s.sel.Set(codes)
	if len(codes) > 0 {
		s.sel.SetAnchor(codes[0])
	}
	return len(codes)
}

// SetFilterText changes the text filter. The selection is kept verbatim.
func (s *State) SetFilterText(q string) {
	s.filter.Text = q
	s.sel.Prune(s.DisplayCodes(), false)
}

// ToggleChip activates chip, or clears it if it is already active.
func (s *State) ToggleChip(c filter.Chip) {
	s.filter.ToggleChip(c)
	s.sel.Prune(s.DisplayCodes(), false)
}

// CycleChip moves to the next chip of kind, ending with none.
func (s *State) CycleChip(kind filter.ChipKind) {
	s.filter.Chip = filter.NextChip(s.Chips(), kind, s.filter.Chip)
}

// ToggleOnlySelected flips the only-selected filter.
func (s *State) ToggleOnlySelected() {
	s.filter.OnlySelected = !s.filter.OnlySelected
}

// ClearFilters drops every filter.
func (s *State) ClearFilters() { s.filter = filter.Filter{} }

// ToggleGrouped flips the grouped-by-unit view.
func (s *State) ToggleGrouped() { s.grouped = !s.grouped }
