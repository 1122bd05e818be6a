// Package reorder moves channels inside the materialized working order.
// Functions take and return code slices and never modify their input.
package reorder

import (
	"errors"
	"slices"
)

var (
	// ErrFiltered means a filter is active: the visible list is a
	// subsequence and a splice into the full order would be ambiguous.
	ErrFiltered = errors.New("reordering is disabled while a filter is active")
	// ErrGrouped means a grouped view mode is engaged.
	ErrGrouped = errors.New("reordering is disabled in grouped view")
)

// Guard reports why dragging is currently disallowed, or nil.
func Guard(filterActive, grouped bool) error {
	switch {
	case filterActive:
		return ErrFiltered
	case grouped:
		return ErrGrouped
	}
	return nil
}

// MoveBefore removes code from order and reinserts it immediately before
// target. It reports false (and returns order unchanged) when code equals
// target or either is missing.
func MoveBefore(order []string, code, target string) ([]string, bool) {
	if code == target {
		return order, false
	}
	from := slices.Index(order, code)
	if from < 0 || !slices.Contains(order, target) {
		return order, false
	}
	out := slices.Delete(slices.Clone(order), from, from+1)
	to := slices.Index(out, target)
	out = slices.Insert(out, to, code)
	return out, !slices.Equal(out, order)
}

// MoveBlockBefore moves every code in selected, keeping their relative order
// from order, to sit immediately before target. When target is itself
// selected the block lands before the first unselected code following
// target, or at the end when there is none. Dropping dragged onto itself is
// a no-op. With one or fewer selected codes it falls back to
// MoveBefore(dragged, target).
func MoveBlockBefore(order []string, selected map[string]bool, dragged, target string) ([]string, bool) {
	if dragged == target {
		return order, false
	}
	var block, rest []string
	for _, c := range order {
		if selected[c] {
			block = append(block, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(block) <= 1 {
		return MoveBefore(order, dragged, target)
	}
	ti := slices.Index(order, target)
	if ti < 0 {
		return order, false
	}

	anchor := ""
	for _, c := range order[ti:] {
		if !selected[c] {
			anchor = c
			break
		}
	}
	at := len(rest)
	if anchor != "" {
		at = slices.Index(rest, anchor)
	}

	out := make([]string, 0, len(order))
	out = append(out, rest[:at]...)
	out = append(out, block...)
	out = append(out, rest[at:]...)
	return out, !slices.Equal(out, order)
}
