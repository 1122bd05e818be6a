package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/coord"
	"github.com/abelbrown/lemure/internal/debounce"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/otel"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/span"
	"github.com/abelbrown/lemure/internal/store"
	"github.com/abelbrown/lemure/internal/viewer"
)

// Debounced call sites.
const (
	keyRedraw debounce.Key = "redraw"
	keyOrder  debounce.Key = "order_save"
	keyState  debounce.Key = "last_state"
	keyStats  debounce.Key = "range_stats"
	keyFilter debounce.Key = "filter"
)

const toastTTL = 3 * time.Second

// Delays are the debounce delays of the UI.
type Delays struct {
	Redraw     time.Duration
	OrderSave  time.Duration
	LastState  time.Duration
	RangeStats time.Duration
	Filter     time.Duration
}

// DefaultDelays returns the standard delays.
func DefaultDelays() Delays {
	return Delays{
		Redraw:     150 * time.Millisecond,
		OrderSave:  350 * time.Millisecond,
		LastState:  600 * time.Millisecond,
		RangeStats: 250 * time.Millisecond,
		Filter:     150 * time.Millisecond,
	}
}

// ObsConfig holds observability dependencies.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig wires the App to the backend and the local store.
// IMPORTANT: App does NOT hold the client or the store. Every func returns a
// tea.Cmd that produces the matching message; a nil func disables the
// feature.
type AppConfig struct {
	Load           func(folder string) tea.Cmd              // DatasetLoaded
	Fetch          func(req plot.Request) tea.Cmd           // SeriesLoaded
	RangeStats     func(token uint64, r span.Range) tea.Cmd // StatsLoaded
	SaveOrder      func(order []string) tea.Cmd             // OrderSaved
	SaveSnapshot   func(snap store.Snapshot) tea.Cmd        // SnapshotSaved
	Export         func(p export.Params) tea.Cmd            // ExportDone
	Catalog        func() tea.Cmd                           // CatalogLoaded
	SaveNamedOrder func(name string, order []string) tea.Cmd
	LoadNamedOrder func(key string) tea.Cmd
	SavePreset     func(name string, p backend.Preset) tea.Cmd
	LoadPreset     func(key string) tea.Cmd
	DeletePreset   func(key string) tea.Cmd
	Recent         func() tea.Cmd              // RecentLoaded
	Remember       func(folder string) tea.Cmd // RecentLoaded
	Watch          func(folder string) tea.Cmd

	Chart       *plot.TermChart
	Step        autostep.Settings
	Delays      Delays
	Snapshot    *store.Snapshot // last session, restored on the first load of its folder
	Folder      string          // loaded at start when non-empty
	Refrigerant string
	HideLegend  bool // initial legend state when no session is restored
	Obs         ObsConfig
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modePrompt
	modePicker
	modeConfirm
)

type promptKind int

const (
	promptFolder promptKind = iota
	promptOrderName
	promptPresetName
)

type pickerKind int

const (
	pickOrders pickerKind = iota
	pickPresets
)

type picker struct {
	kind    pickerKind
	entries []backend.Entry
	cursor  int
	loading bool
}

// App is the root Bubble Tea model.
type App struct {
	cfg   AppConfig
	state *viewer.State
	chart *plot.TermChart
	deb   *debounce.Debouncer

	cursor   int
	dragging string

	mode    inputMode
	input   textinput.Model
	prompt  promptKind
	picker  picker
	pending backend.Entry // preset awaiting delete confirmation

	spinner  spinner.Model
	spinning bool
	help     help.Model

	loading     bool
	exporting   bool
	changed     bool // files of the loaded folder changed on disk
	restoreUsed bool
	showLog     bool
	logLevel    otel.Level // lowest level the log panel lists
	status      string // persistent error line
	toast       string
	toastSeq    int

	recent []string

	width  int
	height int
	ready  bool
}

// NewApp creates a new App from cfg.
func NewApp(cfg AppConfig) App {
	if cfg.Chart == nil {
		cfg.Chart = plot.NewTermChart(80, 20)
	}
	if cfg.Delays == (Delays{}) {
		cfg.Delays = DefaultDelays()
	}
	if cfg.Step == (autostep.Settings{}) {
		cfg.Step = autostep.DefaultSettings()
	}

	st := viewer.New(cfg.Chart, cfg.Step)
	st.SetExportOptions(false, cfg.Refrigerant)
	st.Plot().SetShowLegend(!cfg.HideLegend)
	obs := cfg.Obs
	st.Plot().OnViewport(func(r span.Range) {
		emitTo(obs, otel.Event{Level: otel.LevelDebug, Kind: otel.KindViewport, StartMs: r.StartMs, EndMs: r.EndMs})
	})

	ti := textinput.New()
	ti.CharLimit = 256
	ti.PromptStyle = StatusBarKey
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		cfg:     cfg,
		state:   st,
		chart:   cfg.Chart,
		deb:     debounce.New(),
		input:   ti,
		spinner: s,
		help:    help.New(),
		loading: cfg.Folder != "" && cfg.Load != nil,
	}
}

// Init loads the recent folders and, when configured, the start folder.
func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.cfg.Recent != nil {
		cmds = append(cmds, safe(a.cfg.Recent()))
	}
	if a.loading {
		cmds = append(cmds, safe(a.cfg.Load(a.cfg.Folder)), a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		name := fmt.Sprintf("%T", msg)
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Msg: name})
		obs, start := a.cfg.Obs, time.Now()
		defer func() {
			emitTo(obs, otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgHandled, Msg: name, Dur: time.Since(start)})
		}()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height, a.ready = msg.Width, msg.Height, true
		_, chartW, bodyH := a.layout()
		a.chart.Resize(chartW, bodyH)
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case debounce.Fired:
		if !a.deb.Fire(msg) {
			return a, nil
		}
		return a, a.fired(msg.Key)

	case toastExpired:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case DatasetLoaded:
		return a, a.onDatasetLoaded(msg)
	case SeriesLoaded:
		return a, a.onSeriesLoaded(msg)
	case StatsLoaded:
		a.onStatsLoaded(msg)
		return a, nil
	case OrderSaved:
		return a, a.onOrderSaved(msg)
	case SnapshotSaved:
		a.onSnapshotSaved(msg)
		return a, nil
	case ExportDone:
		return a, a.onExportDone(msg)
	case CatalogLoaded:
		return a, a.onCatalogLoaded(msg)
	case NamedOrderSaved:
		return a, a.onNamedOrderSaved(msg)
	case NamedOrderLoaded:
		return a, a.onNamedOrderLoaded(msg)
	case PresetSaved:
		return a, a.onPresetSaved(msg)
	case PresetLoaded:
		return a, a.onPresetLoaded(msg)
	case PresetDeleted:
		return a, a.onPresetDeleted(msg)
	case RecentLoaded:
		a.onRecentLoaded(msg)
		return a, nil
	case CommandPanicked:
		return a, a.onPanic(msg)
	case coord.FolderChanged:
		a.onFolderChanged(msg)
		return a, nil
	case coord.WatchFailed:
		a.onWatchFailed(msg)
		return a, nil
	}

	// Cursor blink and other input internals.
	if a.mode == modeFilter || a.mode == modePrompt {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// State exposes the viewer state (for testing).
func (a App) State() *viewer.State { return a.state }

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int { return a.cursor }

// Status returns the persistent status line (for testing).
func (a App) Status() string { return a.status }

// Toast returns the transient message (for testing).
func (a App) Toast() string { return a.toast }

func (a *App) busy() bool {
	return a.loading || a.exporting || a.state.Plot().Busy()
}

// spin starts the spinner if it is not already ticking.
func (a *App) spin() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// notify shows text as a toast for toastTTL.
func (a *App) notify(text string) tea.Cmd {
	a.toastSeq++
	a.toast = text
	seq := a.toastSeq
	a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindNotice, Msg: text})
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpired{seq: seq} })
}

func (a *App) emit(e otel.Event) { emitTo(a.cfg.Obs, e) }

func emitTo(obs ObsConfig, e otel.Event) {
	if e.Comp == "" {
		e.Comp = "ui"
	}
	switch {
	case obs.Logger != nil:
		obs.Logger.Emit(e)
	case obs.Ring != nil:
		if e.Time.IsZero() {
			e.Time = time.Now()
		}
		obs.Ring.Push(e)
	}
}

// safe converts a panic inside cmd into a CommandPanicked message.
func safe(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = CommandPanicked{Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		return cmd()
	}
}
