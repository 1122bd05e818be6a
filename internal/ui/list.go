package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lemure/internal/channel"
)

// listRow is what one channel line needs to know about the state.
type listRow struct {
	ch       channel.Channel
	selected bool
	cursor   bool
	dragging bool
}

// renderList renders the channel list. With grouped set a header is drawn
// above each run of equal units. The list scrolls to keep cursor visible.
func renderList(chs []channel.Channel, isSelected func(string) bool, cursor int, dragging string, grouped bool, width, height int) string {
	if len(chs) == 0 {
		return MetaItem.Render("no channels")
	}
	height = max(1, height)
	offset := calcScrollOffset(chs, cursor, height, grouped)

	var b strings.Builder
	lines := 0
	currentUnit := ""
	if offset > 0 {
		currentUnit = unitHeader(chs[offset-1])
	}
	for i := offset; i < len(chs) && lines < height; i++ {
		if grouped {
			if u := unitHeader(chs[i]); i == offset || u != currentUnit {
				currentUnit = u
				b.WriteString(GroupHeader.Render(u))
				b.WriteString("\n")
				lines++
				if lines >= height {
					break
				}
			}
		}
		b.WriteString(renderRow(listRow{
			ch:       chs[i],
			selected: isSelected(chs[i].Code),
			cursor:   i == cursor,
			dragging: chs[i].Code == dragging,
		}, width))
		b.WriteString("\n")
		lines++
	}
	return strings.TrimRight(b.String(), "\n")
}

func unitHeader(c channel.Channel) string {
	if c.Unit == "" {
		return "(no unit)"
	}
	return c.Unit
}

// calcScrollOffset finds the smallest index such that every line from there
// through the cursor, group headers included, fits in height.
func calcScrollOffset(chs []channel.Channel, cursor, height int, grouped bool) int {
	if len(chs) == 0 || cursor < 0 {
		return 0
	}
	cursor = min(cursor, len(chs)-1)
	offset := 0
	if cursor >= height {
		offset = cursor - height + 1
	}
	if !grouped {
		return offset
	}
	for offset <= cursor {
		if visibleLineCount(chs, offset, cursor) <= height {
			return offset
		}
		offset++
	}
	return cursor
}

// visibleLineCount counts the lines chs[from..to] take in the grouped view.
// The first visible row always gets a header.
func visibleLineCount(chs []channel.Channel, from, to int) int {
	lines := 0
	current := ""
	for i := from; i <= to && i < len(chs); i++ {
		if u := unitHeader(chs[i]); i == from || u != current {
			current = u
			lines++
		}
		lines++
	}
	return lines
}

// renderRow renders one channel: mark, code, label and unit.
func renderRow(r listRow, width int) string {
	mark := "  "
	if r.selected {
		mark = SelectedMark.Render("■ ")
	}
	if r.dragging {
		mark = DragItem.Render("↕ ")
	}

	code := r.ch.Code
	meta := ""
	if r.ch.Label != "" && r.ch.Label != r.ch.Code {
		meta = r.ch.Label
	}
	if r.ch.Unit != "" {
		meta = strings.TrimSpace(meta + " [" + r.ch.Unit + "]")
	}

	avail := max(4, width-lipgloss.Width(mark))
	if meta == "" {
		text := truncateRunes(code, avail)
		if r.cursor {
			return mark + CursorItem.Width(avail).Render(text)
		}
		return mark + NormalItem.Render(text)
	}

	codeCol := fmt.Sprintf("%-8s", code)
	if r.cursor {
		return mark + CursorItem.Width(avail).Render(truncateRunes(codeCol+" "+meta, avail))
	}
	cw := lipgloss.Width(codeCol)
	if cw >= avail {
		return mark + NormalItem.Render(truncateRunes(codeCol, avail))
	}
	return mark + NormalItem.Render(codeCol) + MetaItem.Render(truncateRunes(" "+meta, avail-cw))
}

// renderStatusBar renders the bottom bar: position, sort mode, filter and
// busy indicators on the left, short key hints on the right.
func renderStatusBar(left, hints string, width int) string {
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(hints)-2)
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + hints)
}
