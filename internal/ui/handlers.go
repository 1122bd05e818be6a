package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/lemure/internal/coord"
	"github.com/abelbrown/lemure/internal/debounce"
	"github.com/abelbrown/lemure/internal/logging"
	"github.com/abelbrown/lemure/internal/otel"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/store"
)

// fail reports a backend or network error: status line, toast and log.
func (a *App) fail(kind otel.EventKind, what string, err error) tea.Cmd {
	a.status = what + ": " + err.Error()
	logging.Error(what, "err", err)
	a.emit(otel.Event{Level: otel.LevelError, Kind: kind, Err: err.Error(), Msg: what})
	return a.notify(what + " failed")
}

// fired runs the call site whose debounce delay elapsed.
func (a *App) fired(k debounce.Key) tea.Cmd {
	switch k {
	case keyRedraw:
		return a.redrawNow()
	case keyOrder:
		order, ok := a.state.PendingOrder()
		if !ok || a.cfg.SaveOrder == nil {
			return nil
		}
		return safe(a.cfg.SaveOrder(order))
	case keyState:
		if !a.state.Loaded() || a.cfg.SaveSnapshot == nil {
			return nil
		}
		return safe(a.cfg.SaveSnapshot(a.state.Snapshot()))
	case keyStats:
		if !a.state.Loaded() || a.cfg.RangeStats == nil {
			return nil
		}
		tok, r := a.state.BeginStats()
		return safe(a.cfg.RangeStats(tok, r))
	case keyFilter:
		a.state.SetFilterText(a.input.Value())
		a.clampCursor()
	}
	return nil
}

// redrawNow starts a redraw of the ordered selection.
func (a *App) redrawNow() tea.Cmd {
	a.deb.Cancel(keyRedraw)
	req, err := a.state.BeginRedraw()
	switch {
	case errors.Is(err, plot.ErrNoChannels):
		return a.notify("no channels selected")
	case err != nil:
		return nil
	}
	a.emit(otel.Event{
		Kind: otel.KindRedrawStart, Level: otel.LevelDebug, Seq: req.Seq,
		Channels: len(req.Codes), Step: req.Step,
		StartMs: req.Desired.StartMs, EndMs: req.Desired.EndMs,
	})
	if a.cfg.Fetch == nil {
		return nil
	}
	return tea.Batch(safe(a.cfg.Fetch(req)), a.spin())
}

// scheduleRedraw queues a redraw and a snapshot save after a selection,
// order or step change.
func (a *App) scheduleRedraw() tea.Cmd {
	return tea.Batch(
		a.deb.Schedule(keyRedraw, a.cfg.Delays.Redraw),
		a.deb.Schedule(keyState, a.cfg.Delays.LastState),
	)
}

func (a *App) scheduleOrderSave() tea.Cmd {
	return a.deb.Schedule(keyOrder, a.cfg.Delays.OrderSave)
}

func (a *App) scheduleStats() tea.Cmd {
	return a.deb.Schedule(keyStats, a.cfg.Delays.RangeStats)
}

func (a *App) load(folder string) tea.Cmd {
	if a.cfg.Load == nil {
		return nil
	}
	a.loading = true
	a.emit(otel.Event{Kind: otel.KindLoadStart, Level: otel.LevelInfo, Folder: folder})
	return tea.Batch(safe(a.cfg.Load(folder)), a.spin())
}

func (a *App) onDatasetLoaded(msg DatasetLoaded) tea.Cmd {
	a.loading = false
	if msg.Err != nil {
		return a.fail(otel.KindLoadError, "load "+msg.Folder, msg.Err)
	}
	ds := msg.Dataset

	var snap *store.Snapshot
	switch {
	case a.state.Loaded() && a.state.Folder() == ds.Folder:
		cur := a.state.Snapshot()
		snap = &cur
	case !a.restoreUsed && a.cfg.Snapshot != nil &&
		(a.cfg.Snapshot.Folder == "" || a.cfg.Snapshot.Folder == ds.Folder):
		snap = a.cfg.Snapshot
	}
	a.restoreUsed = true

	restored := a.state.Load(ds, snap)
	a.cursor, a.dragging, a.changed, a.status = 0, "", false, ""
	a.deb.Cancel(keyOrder)

	a.emit(otel.Event{
		Kind: otel.KindLoadComplete, Level: otel.LevelInfo, Folder: ds.Folder,
		Channels: len(ds.Channels), Points: ds.Summary.Points, Dur: msg.Elapsed,
	})
	if restored {
		a.emit(otel.Event{Kind: otel.KindRestore, Level: otel.LevelInfo, Folder: ds.Folder, Channels: a.state.SelectedCount()})
	}
	logging.Info("test loaded", "folder", ds.Folder, "channels", len(ds.Channels), "points", ds.Summary.Points)

	cmds := []tea.Cmd{
		a.redrawNow(),
		a.scheduleStats(),
		a.deb.Schedule(keyState, a.cfg.Delays.LastState),
		a.notify(fmt.Sprintf("loaded %s · %d channels", ds.Folder, len(ds.Channels))),
	}
	if a.cfg.Watch != nil {
		cmds = append(cmds, safe(a.cfg.Watch(ds.Folder)))
	}
	if a.cfg.Remember != nil {
		cmds = append(cmds, safe(a.cfg.Remember(ds.Folder)))
	}
	return tea.Batch(cmds...)
}

func (a *App) onSeriesLoaded(msg SeriesLoaded) tea.Cmd {
	var traces []plot.Trace
	if msg.Err == nil && msg.Series != nil {
		traces = msg.Series.Traces(msg.Req.Codes, a.state.Meta())
	}
	err := a.state.CompleteRedraw(msg.Req, traces, msg.Err)
	switch {
	case errors.Is(err, plot.ErrSuperseded):
		a.emit(otel.Event{Kind: otel.KindRedrawSuperseded, Level: otel.LevelDebug, Seq: msg.Req.Seq})
		return nil
	case err != nil:
		return a.fail(otel.KindRedrawError, "draw", err)
	}
	a.status = ""
	// The server picks the stride when only max_points was sent.
	points, step := 0, msg.Req.Step
	if msg.Series != nil {
		points = len(msg.Series.T)
		if msg.Series.Step > 0 {
			step = msg.Series.Step
		}
	}
	a.emit(otel.Event{
		Kind: otel.KindRedrawComplete, Level: otel.LevelInfo, Seq: msg.Req.Seq,
		Channels: len(msg.Req.Codes), Points: points, Step: step,
	})
	logging.Debug("plot updated", "channels", len(msg.Req.Codes), "points", points, "step", step)
	return a.scheduleStats()
}

func (a *App) onStatsLoaded(msg StatsLoaded) {
	if msg.Err != nil {
		logging.Warn("range stats", "err", msg.Err)
		a.emit(otel.Event{Kind: otel.KindStatsError, Level: otel.LevelWarn, Seq: msg.Token, Err: msg.Err.Error()})
		return
	}
	if !a.state.ApplyStats(msg.Token, msg.Stats) {
		a.emit(otel.Event{Kind: otel.KindStatsStale, Level: otel.LevelDebug, Seq: msg.Token})
		return
	}
	a.emit(otel.Event{
		Kind: otel.KindStatsApplied, Level: otel.LevelDebug, Seq: msg.Token,
		StartMs: msg.Stats.Range.StartMs, EndMs: msg.Stats.Range.EndMs, Points: msg.Stats.Points,
	})
}

func (a *App) onOrderSaved(msg OrderSaved) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindOrderError, "save order", msg.Err)
	}
	a.state.MarkPersisted(msg.Order)
	a.emit(otel.Event{Kind: otel.KindOrderSave, Level: otel.LevelInfo, Channels: len(msg.Order)})
	return nil
}

func (a *App) onSnapshotSaved(msg SnapshotSaved) {
	if msg.Err != nil {
		logging.Warn("save last session", "err", msg.Err)
		a.emit(otel.Event{Kind: otel.KindError, Level: otel.LevelWarn, Msg: "save last session", Err: msg.Err.Error()})
	}
}

func (a *App) onExportDone(msg ExportDone) tea.Cmd {
	a.exporting = false
	if msg.Err != nil {
		return a.fail(otel.KindExportError, "export "+string(msg.Format), msg.Err)
	}
	a.status = ""
	r := msg.Result
	e := otel.Event{Kind: otel.KindExportComplete, Level: otel.LevelInfo, Msg: r.Path, Dur: r.Elapsed}
	if r.Timing != "" || r.ServerTime > 0 {
		e.Extra = map[string]any{"server_s": r.ServerTime.Seconds(), "timing": r.Timing}
	}
	a.emit(e)
	logging.Info("export written", "path", r.Path, "size", r.Size, "elapsed", r.Elapsed)
	return a.notify(r.Summary())
}

func (a *App) onCatalogLoaded(msg CatalogLoaded) tea.Cmd {
	if msg.Err != nil {
		if a.mode == modePicker {
			a.mode = modeNormal
		}
		return a.fail(otel.KindError, "list saved items", msg.Err)
	}
	if a.mode != modePicker || msg.Catalog == nil {
		return nil
	}
	a.picker.loading = false
	if a.picker.kind == pickOrders {
		a.picker.entries = msg.Catalog.Orders
	} else {
		a.picker.entries = msg.Catalog.Presets
	}
	a.picker.cursor = min(a.picker.cursor, max(0, len(a.picker.entries)-1))
	return nil
}

func (a *App) onNamedOrderSaved(msg NamedOrderSaved) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindOrderError, "save named order", msg.Err)
	}
	a.state.SetSavedOrder(msg.Order)
	a.deb.Cancel(keyOrder)
	cmds := []tea.Cmd{a.scheduleRedraw(), a.notify(fmt.Sprintf("order %q saved", msg.Name))}
	if a.cfg.SaveOrder != nil {
		cmds = append(cmds, safe(a.cfg.SaveOrder(msg.Order)))
	}
	return tea.Batch(cmds...)
}

func (a *App) onNamedOrderLoaded(msg NamedOrderLoaded) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindOrderError, "load named order", msg.Err)
	}
	a.state.SetSavedOrder(msg.Order.Order)
	a.clampCursor()
	return tea.Batch(
		a.scheduleOrderSave(),
		a.scheduleRedraw(),
		a.notify(fmt.Sprintf("order %q applied", msg.Order.Name)),
	)
}

func (a *App) onPresetSaved(msg PresetSaved) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindError, "save preset", msg.Err)
	}
	return a.notify(fmt.Sprintf("preset %q saved", msg.Name))
}

func (a *App) onPresetLoaded(msg PresetLoaded) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindError, "load preset", msg.Err)
	}
	persist, n := a.state.ApplyPreset(*msg.Preset)
	a.clampCursor()
	a.emit(otel.Event{Kind: otel.KindPresetApply, Level: otel.LevelInfo, Msg: msg.Name, Channels: n})

	var cmds []tea.Cmd
	if persist != nil && a.cfg.SaveOrder != nil {
		a.deb.Cancel(keyOrder)
		cmds = append(cmds, safe(a.cfg.SaveOrder(persist)))
	}
	cmds = append(cmds,
		a.redrawNow(),
		a.deb.Schedule(keyState, a.cfg.Delays.LastState),
		a.notify(fmt.Sprintf("preset %q · %d channels", msg.Name, n)),
	)
	return tea.Batch(cmds...)
}

func (a *App) onPresetDeleted(msg PresetDeleted) tea.Cmd {
	if msg.Err != nil {
		return a.fail(otel.KindError, "delete preset", msg.Err)
	}
	cmds := []tea.Cmd{a.notify("preset deleted")}
	if a.mode == modePicker && a.cfg.Catalog != nil {
		a.picker.loading = true
		cmds = append(cmds, safe(a.cfg.Catalog()))
	}
	return tea.Batch(cmds...)
}

func (a *App) onRecentLoaded(msg RecentLoaded) {
	if msg.Err != nil {
		logging.Warn("recent folders", "err", msg.Err)
		return
	}
	a.recent = msg.Folders
	if a.mode == modePrompt && a.prompt == promptFolder {
		a.input.SetSuggestions(a.recent)
	}
}

func (a *App) onPanic(msg CommandPanicked) tea.Cmd {
	a.loading, a.exporting = false, false
	a.state.AbortRedraw()
	logging.Error("command panicked", "err", msg.Err)
	a.emit(otel.Event{Kind: otel.KindPanic, Level: otel.LevelError, Err: msg.Err.Error()})
	a.status = "internal error: " + msg.Err.Error()
	return a.notify("internal error (D shows the log)")
}

func (a *App) onFolderChanged(msg coord.FolderChanged) {
	if msg.Folder != a.state.Folder() {
		return
	}
	a.changed = true
	a.emit(otel.Event{
		Kind: otel.KindFolderChange, Level: otel.LevelInfo, Folder: msg.Folder,
		Msg: strings.Join(msg.Paths, ", "),
	})
}

func (a *App) onWatchFailed(msg coord.WatchFailed) {
	logging.Warn("folder watch", "folder", msg.Folder, "err", msg.Err)
	a.emit(otel.Event{Kind: otel.KindError, Level: otel.LevelWarn, Folder: msg.Folder, Err: msg.Err.Error(), Msg: "watch"})
}

// quit flushes pending persistence before exiting.
func (a *App) quit() tea.Cmd {
	var flush []tea.Cmd
	if order, ok := a.state.PendingOrder(); ok && a.cfg.SaveOrder != nil {
		flush = append(flush, safe(a.cfg.SaveOrder(order)))
	}
	if a.state.Loaded() && a.cfg.SaveSnapshot != nil {
		flush = append(flush, safe(a.cfg.SaveSnapshot(a.state.Snapshot())))
	}
	a.emit(otel.Event{Kind: otel.KindShutdown, Level: otel.LevelInfo, Time: time.Now()})
	if len(flush) == 0 {
		return tea.Quit
	}
	return tea.Sequence(append(flush, tea.Quit)...)
}
