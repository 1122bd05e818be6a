package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Rows below the body: info, range, message and status bar.
const footerLines = 4

// layout splits the terminal into the channel list and the chart.
func (a *App) layout() (listW, chartW, bodyH int) {
	listW = max(20, min(40, a.width/3))
	chartW = max(10, a.width-listW-2)
	bodyH = max(3, a.height-footerLines)
	return listW, chartW, bodyH
}

// View renders the app.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showLog {
		panel := debugOverlay(a.cfg.Obs.Ring, a.logLevel, a.width, a.height-1)
		return lipgloss.JoinVertical(lipgloss.Left, panel, debugStatusBar(a.logLevel, a.width))
	}

	listW, chartW, bodyH := a.layout()
	var body string
	switch {
	case a.mode == modePicker || a.mode == modeConfirm:
		body = lipgloss.Place(a.width, bodyH, lipgloss.Center, lipgloss.Center, a.pickerView())
	case a.help.ShowAll:
		body = lipgloss.NewStyle().Height(bodyH).Render(HelpStyle.Render(a.help.View(keys)))
	case !a.state.Loaded():
		msg := "No test loaded. Press L to open a folder."
		if a.loading {
			msg = a.spinner.View() + " loading…"
		}
		body = lipgloss.Place(a.width, bodyH, lipgloss.Center, lipgloss.Center, MetaItem.Render(msg))
	default:
		list := renderList(a.state.Display(), a.state.Selected, a.cursor, a.dragging, a.state.Grouped(), listW-2, bodyH)
		left := ListPane.Width(listW).Height(bodyH).Render(list)
		right := lipgloss.NewStyle().Width(chartW).Height(bodyH).Render(a.chart.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		a.infoLine(),
		a.rangeLine(),
		a.messageLine(),
		a.statusBar(),
	)
}

func (a *App) infoLine() string {
	if !a.state.Loaded() {
		return ""
	}
	_, refrigerant := a.state.ExportOptions()
	return InfoLine.Render(truncateRunes(a.state.ExportInfo().String()+" · "+refrigerant, a.width-2))
}

func (a *App) rangeLine() string {
	if !a.state.Loaded() {
		return ""
	}
	s := a.state.Summary()
	text := fmt.Sprintf("%s · %s · %s points", a.state.Range().String(), a.state.Folder(), humanize.Comma(int64(s.Points)))
	return InfoLine.Render(truncateRunes(text, a.width-2))
}

// messageLine shows, by priority: the active input, a delete confirmation,
// the error status, a toast, or the data changed notice.
func (a *App) messageLine() string {
	switch {
	case a.mode == modeFilter:
		count := FilterBarCount.Render(fmt.Sprintf(" %d/%d", len(a.state.Display()), len(a.state.Working())))
		return FilterBar.Render(a.input.View()) + count
	case a.mode == modePrompt:
		return FilterBar.Render(a.input.View())
	case a.mode == modeConfirm:
		return NoticeStyle.Render(fmt.Sprintf("delete preset %q? (y/n)", a.pending.Name))
	case a.status != "":
		return ErrorStyle.Render(truncateRunes(a.status, a.width-2))
	case a.toast != "":
		return ToastStyle.Render(truncateRunes(a.toast, a.width-2))
	case a.changed:
		return NoticeStyle.Render("data changed on disk (press R to reload)")
	}
	return ""
}

func (a *App) statusBar() string {
	var parts []string
	if a.busy() {
		parts = append(parts, a.spinner.View())
	}
	if a.state.Loaded() {
		n := len(a.state.Display())
		pos := 0
		if n > 0 {
			pos = a.cursor + 1
		}
		parts = append(parts,
			fmt.Sprintf("%d/%d", pos, n),
			fmt.Sprintf("sel %d", a.state.SelectedCount()),
			"sort "+a.state.Mode().Title(),
		)
		if f := a.state.Filter(); f.Active() {
			parts = append(parts, f.Describe())
		}
		if a.state.Grouped() {
			parts = append(parts, "grouped")
		}
		if a.dragging != "" {
			parts = append(parts, "moving "+a.dragging)
		}
	}
	left := " " + strings.Join(parts, " · ")
	hints := ""
	if !a.help.ShowAll {
		h := a.help
		h.Width = max(0, a.width-lipgloss.Width(left)-2)
		hints = h.View(keys)
	}
	return renderStatusBar(left, hints, a.width)
}

func (a *App) pickerView() string {
	p := a.picker
	title := "Saved orders"
	if p.kind == pickPresets {
		title = "Presets (d deletes)"
	}
	var b strings.Builder
	b.WriteString(GroupHeader.Render(title))
	b.WriteString("\n")
	switch {
	case p.loading:
		b.WriteString(a.spinner.View() + " loading…")
	case len(p.entries) == 0:
		b.WriteString(MetaItem.Render("nothing saved yet"))
	default:
		for i, e := range p.entries {
			line := fmt.Sprintf("%-24s %3d  %s", truncateRunes(e.Name, 24), e.Count, e.SavedAt)
			if i == p.cursor {
				b.WriteString(CursorItem.Render(line))
			} else {
				b.WriteString(NormalItem.Render(line))
			}
			b.WriteString("\n")
		}
	}
	return PickerPanel.Render(strings.TrimRight(b.String(), "\n"))
}
