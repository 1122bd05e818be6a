package viewer

import (
	"slices"

	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/reorder"
)

// SetSortMode switches the sort mode. The selection is intersected with
// the channels of the new order.
func (s *State) SetSortMode(m channel.SortMode) {
	s.mode = m
	s.refresh()
	s.sel.Prune(s.WorkingCodes(), true)
}

// CanDrag returns the reason dragging is disabled, or nil.
func (s *State) CanDrag() error {
	return reorder.Guard(s.filter.Active(), s.grouped)
}

// Drag moves dragged before target. When dragged is part of a multi
// selection the whole selection moves as a block. A successful move makes
// the result the custom order and switches to custom mode. It reports
// whether anything moved; dropping a channel onto itself never does.
func (s *State) Drag(dragged, target string) (bool, error) {
	if err := s.CanDrag(); err != nil {
		return false, err
	}
	if dragged == target {
		return false, nil
	}
	order := s.WorkingCodes()
	var (
		next  []string
		moved bool
	)
	if s.sel.Has(dragged) && s.sel.Len() > 1 {
		set := make(map[string]bool, s.sel.Len())
		for _, c := range s.Ordered() {
			set[c] = true
		}
		next, moved = reorder.MoveBlockBefore(order, set, dragged, target)
	} else {
		next, moved = reorder.MoveBefore(order, dragged, target)
	}
	if !moved {
		return false, nil
	}
	s.SetSavedOrder(next)
	return true, nil
}

// SetSavedOrder makes order the custom order and switches to custom mode.
func (s *State) SetSavedOrder(order []string) {
	s.saved = slices.Clone(order)
	s.mode = channel.ModeCustom
	s.refresh()
}

// SavedOrder is the custom order as last set.
func (s *State) SavedOrder() []string { return slices.Clone(s.saved) }

// PendingOrder returns the custom order if it differs from what the server
// last acknowledged.
func (s *State) PendingOrder() ([]string, bool) {
	if slices.Equal(s.saved, s.persisted) {
		return nil, false
	}
	return slices.Clone(s.saved), true
}

// MarkPersisted records order as acknowledged by the server.
func (s *State) MarkPersisted(order []string) {
	s.persisted = slices.Clone(order)
}
