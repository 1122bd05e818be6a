package ui

import (
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/filter"
	"github.com/abelbrown/lemure/internal/otel"
)

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeFilter:
		return a, a.filterKey(msg)
	case modePrompt:
		return a, a.promptKey(msg)
	case modePicker:
		return a, a.pickerKey(msg)
	case modeConfirm:
		return a, a.confirmKey(msg)
	}

	if a.showLog {
		switch {
		case key.Matches(msg, keys.Log), key.Matches(msg, keys.Cancel):
			a.showLog = false
		case key.Matches(msg, keys.LogLevel):
			a.logLevel = nextLevel(a.logLevel)
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		}
		return a, nil
	}
	a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Msg: msg.String()})
	return a, a.normalKey(msg)
}

func (a *App) normalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return a.quit()
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case key.Matches(msg, keys.Log):
		a.showLog = true
		return nil
	case key.Matches(msg, keys.Load):
		return a.openPrompt(promptFolder, "folder> ", "")
	}

	if !a.state.Loaded() {
		return nil
	}

	switch {
	// Cursor and selection.
	case key.Matches(msg, keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, keys.ShiftUp), key.Matches(msg, keys.ShiftDown):
		if key.Matches(msg, keys.ShiftUp) {
			a.moveCursor(-1)
		} else {
			a.moveCursor(1)
		}
		if code, ok := a.cursorCode(); ok {
			a.state.Click(code, false, true)
			return a.scheduleRedraw()
		}
	case key.Matches(msg, keys.Click):
		if code, ok := a.cursorCode(); ok {
			a.state.Click(code, false, false)
			return a.scheduleRedraw()
		}
	case key.Matches(msg, keys.CtrlClick):
		if code, ok := a.cursorCode(); ok {
			a.state.Click(code, true, false)
			return a.scheduleRedraw()
		}
	case key.Matches(msg, keys.Solo):
		if code, ok := a.cursorCode(); ok {
			a.state.Solo(code)
			return tea.Batch(a.redrawNow(), a.deb.Schedule(keyState, a.cfg.Delays.LastState))
		}
	case key.Matches(msg, keys.SelectAll):
		a.state.SelectAll()
		return a.scheduleRedraw()
	case key.Matches(msg, keys.Clear):
		a.state.Clear()
		return a.scheduleRedraw()

	// Filters and ordering.
	case key.Matches(msg, keys.Filter):
		a.mode = modeFilter
		a.input.Prompt = "/"
		a.input.ShowSuggestions = false
		a.input.SetValue(a.state.Filter().Text)
		a.input.CursorEnd()
		return a.input.Focus()
	case key.Matches(msg, keys.UnitChip):
		a.state.CycleChip(filter.ChipUnit)
		a.clampCursor()
	case key.Matches(msg, keys.PrefixChip):
		a.state.CycleChip(filter.ChipPrefix)
		a.clampCursor()
	case key.Matches(msg, keys.OnlySelected):
		a.state.ToggleOnlySelected()
		a.clampCursor()
	case key.Matches(msg, keys.Group):
		a.state.ToggleGrouped()
		a.dragging = ""
	case key.Matches(msg, keys.Sort):
		a.state.SetSortMode(a.state.Mode().Next())
		a.dragging = ""
		a.clampCursor()
		return tea.Batch(a.scheduleRedraw(), a.notify("sort: "+a.state.Mode().Title()))
	case key.Matches(msg, keys.Mark):
		return a.mark()
	case key.Matches(msg, keys.Cancel):
		switch {
		case a.dragging != "":
			a.dragging = ""
		case a.state.Filter().Active():
			a.state.ClearFilters()
			a.clampCursor()
		}

	// Viewport.
	case key.Matches(msg, keys.ZoomIn):
		a.chart.Zoom(0.5)
		return a.scheduleStats()
	case key.Matches(msg, keys.ZoomOut):
		a.chart.Zoom(2)
		return a.scheduleStats()
	case key.Matches(msg, keys.PanLeft):
		a.chart.Pan(-0.25)
		return a.scheduleStats()
	case key.Matches(msg, keys.PanRight):
		a.chart.Pan(0.25)
		return a.scheduleStats()
	case key.Matches(msg, keys.Autorange):
		a.chart.Autorange()
		return a.scheduleStats()

	// Step and legend.
	case key.Matches(msg, keys.AutoStep):
		a.state.ToggleAutoStep()
		return a.scheduleRedraw()
	case key.Matches(msg, keys.StepDown):
		a.state.AdjustStep(false)
		return a.scheduleRedraw()
	case key.Matches(msg, keys.StepUp):
		a.state.AdjustStep(true)
		return a.scheduleRedraw()
	case key.Matches(msg, keys.Legend):
		a.state.ToggleLegend()
		return a.scheduleRedraw()

	// Export.
	case key.Matches(msg, keys.ExportCSV):
		return a.startExport(export.CSV)
	case key.Matches(msg, keys.ExportXLSX):
		return a.startExport(export.XLSX)
	case key.Matches(msg, keys.ExportTemplate):
		return a.startExport(export.Template)
	case key.Matches(msg, keys.Extra):
		a.state.ToggleIncludeExtra()
	case key.Matches(msg, keys.Refrigerant):
		extra, cur := a.state.ExportOptions()
		i := slices.Index(export.Refrigerants, cur)
		next := export.Refrigerants[(i+1)%len(export.Refrigerants)]
		a.state.SetExportOptions(extra, next)
		return a.notify("refrigerant " + next)

	// Tests, orders and presets.
	case key.Matches(msg, keys.Reload):
		return a.load(a.state.Folder())
	case key.Matches(msg, keys.SaveOrder):
		return a.openPrompt(promptOrderName, "order name> ", "")
	case key.Matches(msg, keys.SavePreset):
		return a.openPrompt(promptPresetName, "preset name> ", "")
	case key.Matches(msg, keys.LoadOrder):
		return a.openPicker(pickOrders)
	case key.Matches(msg, keys.LoadPreset):
		return a.openPicker(pickPresets)
	}
	return nil
}

// mark picks up the channel under the cursor, or drops the picked-up
// channel (with the rest of its selection block) before it.
func (a *App) mark() tea.Cmd {
	code, ok := a.cursorCode()
	if !ok {
		return nil
	}
	if a.dragging == "" {
		if err := a.state.CanDrag(); err != nil {
			return a.notify(err.Error())
		}
		a.dragging = code
		return nil
	}
	dragged := a.dragging
	a.dragging = ""
	if dragged == code {
		return nil
	}
	moved, err := a.state.Drag(dragged, code)
	if err != nil {
		return a.notify(err.Error())
	}
	if !moved {
		return nil
	}
	if i := slices.Index(a.state.DisplayCodes(), dragged); i >= 0 {
		a.cursor = i
	}
	return tea.Batch(a.scheduleOrderSave(), a.scheduleRedraw())
}

func (a *App) startExport(f export.Format) tea.Cmd {
	if a.exporting {
		return a.notify("export already running")
	}
	if a.cfg.Export == nil {
		return nil
	}
	p := a.state.ExportParams(f)
	if _, err := export.BuildQuery(p); err != nil {
		if errors.Is(err, export.ErrNoChannels) {
			return a.notify("no channels selected")
		}
		return a.notify(err.Error())
	}
	a.exporting = true
	a.emit(otel.Event{
		Kind: otel.KindExportStart, Level: otel.LevelInfo, Msg: string(f),
		Channels: len(p.Codes), Step: p.Step, StartMs: p.Window.StartMs, EndMs: p.Window.EndMs,
	})
	return tea.Batch(safe(a.cfg.Export(p)), a.spin(), a.notify("exporting "+string(f)+"…"))
}

func (a *App) openPrompt(kind promptKind, prompt, value string) tea.Cmd {
	a.mode = modePrompt
	a.prompt = kind
	a.input.Prompt = prompt
	a.input.SetValue(value)
	a.input.ShowSuggestions = kind == promptFolder
	if kind == promptFolder {
		a.input.SetSuggestions(a.recent)
	} else {
		a.input.SetSuggestions(nil)
	}
	return a.input.Focus()
}

func (a *App) closeInput() {
	a.mode = modeNormal
	a.input.Blur()
	a.input.Reset()
}

func (a *App) filterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		a.deb.Cancel(keyFilter)
		a.state.SetFilterText(a.input.Value())
		a.clampCursor()
		a.closeInput()
		return nil
	case tea.KeyEsc:
		a.deb.Cancel(keyFilter)
		a.state.SetFilterText("")
		a.clampCursor()
		a.closeInput()
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return tea.Batch(cmd, a.deb.Schedule(keyFilter, a.cfg.Delays.Filter))
}

func (a *App) promptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.closeInput()
		return nil
	case tea.KeyEnter:
		value := strings.TrimSpace(a.input.Value())
		kind := a.prompt
		a.closeInput()
		if value == "" {
			return nil
		}
		return a.submitPrompt(kind, value)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a *App) submitPrompt(kind promptKind, value string) tea.Cmd {
	switch kind {
	case promptFolder:
		return a.load(value)
	case promptOrderName:
		if !a.state.Loaded() || a.cfg.SaveNamedOrder == nil {
			return nil
		}
		return safe(a.cfg.SaveNamedOrder(value, a.state.WorkingCodes()))
	case promptPresetName:
		if !a.state.Loaded() || a.cfg.SavePreset == nil {
			return nil
		}
		return safe(a.cfg.SavePreset(value, a.state.CapturePreset()))
	}
	return nil
}

func (a *App) openPicker(kind pickerKind) tea.Cmd {
	if a.cfg.Catalog == nil {
		return nil
	}
	a.mode = modePicker
	a.picker = picker{kind: kind, loading: true}
	return safe(a.cfg.Catalog())
}

func (a *App) pickerKey(msg tea.KeyMsg) tea.Cmd {
	p := &a.picker
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		a.mode = modeNormal
	case key.Matches(msg, keys.Up):
		p.cursor = max(0, p.cursor-1)
	case key.Matches(msg, keys.Down):
		p.cursor = min(max(0, len(p.entries)-1), p.cursor+1)
	case msg.Type == tea.KeyEnter:
		if p.cursor >= len(p.entries) {
			return nil
		}
		e := p.entries[p.cursor]
		a.mode = modeNormal
		if p.kind == pickOrders {
			if a.cfg.LoadNamedOrder != nil {
				return safe(a.cfg.LoadNamedOrder(e.Key))
			}
			return nil
		}
		if a.cfg.LoadPreset != nil {
			return safe(a.cfg.LoadPreset(e.Key))
		}
	case msg.String() == "d" && p.kind == pickPresets:
		if p.cursor < len(p.entries) && a.cfg.DeletePreset != nil {
			a.pending = p.entries[p.cursor]
			a.mode = modeConfirm
		}
	}
	return nil
}

func (a *App) confirmKey(msg tea.KeyMsg) tea.Cmd {
	a.mode = modePicker
	if msg.String() != "y" {
		return nil
	}
	e := a.pending
	a.pending = backend.Entry{}
	return safe(a.cfg.DeletePreset(e.Key))
}

func (a *App) cursorCode() (string, bool) {
	codes := a.state.DisplayCodes()
	if a.cursor < 0 || a.cursor >= len(codes) {
		return "", false
	}
	return codes[a.cursor], true
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	a.clampCursor()
}

func (a *App) clampCursor() {
	n := len(a.state.Display())
	a.cursor = max(0, min(a.cursor, n-1))
}
