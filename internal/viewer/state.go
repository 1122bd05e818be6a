// Package viewer holds the single owned state of a lemure session.
//
// State is mutated only from the UI event loop. Every list the renderer
// shows is derived from the fields here (file order, saved order, sort
// mode, filter), never read back from what was drawn.
package viewer

import (
	"slices"
	"strconv"
	"strings"

	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/filter"
	"github.com/abelbrown/lemure/internal/plot"
	"github.com/abelbrown/lemure/internal/selection"
	"github.com/abelbrown/lemure/internal/span"
	"github.com/abelbrown/lemure/internal/store"
)

// State is everything the viewer knows about the loaded test.
type State struct {
	folder  string
	summary backend.Summary
	loads   int

	file []channel.Channel
	meta map[string]channel.Channel

	saved     []string // custom order, as last set locally
	persisted []string // custom order, as last acknowledged by the server
	mode      channel.SortMode
	working   []channel.Channel

	filter  filter.Filter
	grouped bool
	sel     *selection.Model

	step  autostep.Settings
	stats autostep.Cache
	plot  *plot.Controller

	includeExtra bool
	refrigerant  string
}

// New returns an empty State drawing into chart.
func New(chart plot.Chart, step autostep.Settings) *State {
	s := &State{
		sel:         selection.New(),
		step:        step.Sanitize(),
		plot:        plot.NewController(chart),
		mode:        channel.ModeFile,
		refrigerant: export.DefaultRefrigerant,
		meta:        map[string]channel.Channel{},
	}
	s.plot.SetShowLegend(true)
	return s
}

// Load replaces the dataset wholesale. When snap is non-nil its selection,
// sort mode and step settings are restored for the codes that still exist;
// otherwise the default selection is used. It reports whether anything was
// restored from snap.
func (s *State) Load(ds *backend.Dataset, snap *store.Snapshot) bool {
	s.loads++
	s.folder = ds.Folder
	s.summary = ds.Summary
	s.file = slices.Clone(ds.Channels)
	if len(ds.FileOrder) > 0 {
		s.file = channel.CustomSaved(s.file, ds.FileOrder)
	}
	s.meta = channel.Lookup(s.file)
	s.saved = slices.Clone(ds.SavedOrder)
	s.persisted = slices.Clone(ds.SavedOrder)
	s.filter = filter.Filter{}

	s.mode = channel.ModeFile
	if len(s.saved) > 0 {
		s.mode = channel.ModeCustom
	}

	restored := false
	s.sel = selection.New()
	if snap != nil {
		if m, ok := channel.ParseSortMode(snap.SortMode); ok {
			s.mode = m
		}
		s.step = snap.Settings.Sanitize()
		s.plot.SetShowLegend(snap.ShowLegend)
		codes := s.existing(snap.Selected)
		if len(codes) > 0 {
			s.sel.Set(codes)
			s.sel.SetAnchor(codes[0])
			restored = true
		}
	}
	s.refresh()
	if !restored {
		def := selection.Default(s.file)
		s.sel.Set(def)
		if len(s.file) > 0 {
			s.sel.SetAnchor(s.file[0].Code)
		}
	}

	s.plot.Reset(s.summary.Range(), revision(s.folder, s.loads))
	s.stats.Reset()
	return restored
}

func revision(folder string, n int) string {
	return folder + "#" + strconv.Itoa(n)
}

// existing keeps the codes of the loaded test, in the order given, without
// duplicates.
func (s *State) existing(codes []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range codes {
		if _, ok := s.meta[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (s *State) refresh() {
	s.working = channel.WorkingOrder(s.mode, s.file, s.saved)
}

// Loaded reports whether a test is loaded.
func (s *State) Loaded() bool { return s.folder != "" }

func (s *State) Folder() string           { return s.folder }
func (s *State) Summary() backend.Summary { return s.summary }
func (s *State) Plot() *plot.Controller   { return s.plot }
func (s *State) Mode() channel.SortMode   { return s.mode }
func (s *State) Filter() filter.Filter    { return s.filter }
func (s *State) Grouped() bool            { return s.grouped }

// Meta maps code to channel for the loaded test.
func (s *State) Meta() map[string]channel.Channel { return s.meta }

// File is the canonical channel list in backend order.
func (s *State) File() []channel.Channel { return s.file }

// Working is the full ordering for the current sort mode.
func (s *State) Working() []channel.Channel { return s.working }

// WorkingCodes is Working as codes.
func (s *State) WorkingCodes() []string { return channel.Codes(s.working) }

// Display is the working order after the filters. In the grouped view the
// channels are gathered by unit, keeping working order inside each group.
func (s *State) Display() []channel.Channel {
	out := filter.Apply(s.working, s.filter, s.sel.Has)
	if s.grouped {
		slices.SortStableFunc(out, func(a, b channel.Channel) int {
			return strings.Compare(a.Unit, b.Unit)
		})
	}
	return out
}

// DisplayCodes is Display as codes.
func (s *State) DisplayCodes() []string { return channel.Codes(s.Display()) }

// Chips lists the category chips of the loaded test.
func (s *State) Chips() []filter.Chip { return filter.Chips(s.file) }

// Range is the window exports and range stats use.
func (s *State) Range() span.Range { return s.plot.Window() }
