package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines every binding of the main view.
type keyMap struct {
	Up, Down           key.Binding
	ShiftUp, ShiftDown key.Binding
	Click, CtrlClick   key.Binding
	Solo               key.Binding
	SelectAll, Clear   key.Binding

	Filter, UnitChip, PrefixChip, OnlySelected key.Binding
	Sort, Group, Mark, Cancel                  key.Binding

	ZoomIn, ZoomOut, PanLeft, PanRight, Autorange key.Binding
	AutoStep, StepDown, StepUp, Legend            key.Binding

	ExportCSV, ExportXLSX, ExportTemplate, Extra, Refrigerant key.Binding

	Load, Reload, SaveOrder, LoadOrder, SavePreset, LoadPreset key.Binding

	Log, LogLevel, Help, Quit key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "move")),
	Down:      key.NewBinding(key.WithKeys("j", "down")),
	ShiftUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("J/K", "extend")),
	ShiftDown: key.NewBinding(key.WithKeys("J", "shift+down")),
	Click:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	CtrlClick: key.NewBinding(key.WithKeys("x", "ctrl+@"), key.WithHelp("x", "toggle")),
	Solo:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "solo")),
	SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),

	Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	UnitChip:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unit chip")),
	PrefixChip:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prefix chip")),
	OnlySelected: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "only selected")),
	Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Group:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group by unit")),
	Mark:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
	Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
	ZoomOut:   key.NewBinding(key.WithKeys("-")),
	PanLeft:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "pan")),
	PanRight:  key.NewBinding(key.WithKeys("right", "l")),
	Autorange: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "full range")),
	AutoStep:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "auto step")),
	StepDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "step")),
	StepUp:    key.NewBinding(key.WithKeys("]")),
	Legend:    key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "legend")),

	ExportCSV:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "csv")),
	ExportXLSX:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "xlsx")),
	ExportTemplate: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "template")),
	Extra:          key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "include Z")),
	Refrigerant:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "refrigerant")),

	Load:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load")),
	Reload:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
	SaveOrder:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "save order")),
	LoadOrder:  key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "orders")),
	SavePreset: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "save preset")),
	LoadPreset: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "presets")),

	Log:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "log")),
	LogLevel: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "level")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Click, k.Solo, k.Filter, k.Sort, k.ZoomIn, k.ExportCSV, k.Load, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.ShiftUp, k.Click, k.CtrlClick, k.Solo, k.SelectAll, k.Clear},
		{k.Filter, k.UnitChip, k.PrefixChip, k.OnlySelected, k.Sort, k.Group, k.Mark},
		{k.ZoomIn, k.PanLeft, k.Autorange, k.AutoStep, k.StepDown, k.Legend},
		{k.ExportCSV, k.ExportXLSX, k.ExportTemplate, k.Extra, k.Refrigerant},
		{k.Load, k.Reload, k.SaveOrder, k.LoadOrder, k.SavePreset, k.LoadPreset, k.Log, k.Quit},
	}
}
