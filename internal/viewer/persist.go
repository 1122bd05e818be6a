package viewer

import (
	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/channel"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/store"
)

// Snapshot captures the state restored on the next start.
func (s *State) Snapshot() store.Snapshot {
	return store.Snapshot{
		Folder:     s.folder,
		Selected:   s.Ordered(),
		SortMode:   string(s.mode),
		Settings:   s.step,
		ShowLegend: s.plot.ShowLegend(),
	}
}

// CapturePreset bundles the selection and view settings.
func (s *State) CapturePreset() backend.Preset {
	return backend.Preset{
		Channels:   s.Ordered(),
		SortMode:   string(s.mode),
		Order:      s.WorkingCodes(),
		Settings:   s.step,
		ShowLegend: s.plot.ShowLegend(),
	}
}

// ApplyPreset applies p: settings first, then the order, then the sort
// mode, then the selection of the channels that exist. It returns the order
// that must be persisted as the saved order (nil when p carries none) and
// the number of channels selected.
func (s *State) ApplyPreset(p backend.Preset) ([]string, int) {
	s.step = p.Settings.Sanitize()
	s.plot.SetShowLegend(p.ShowLegend)

	var persist []string
	if len(p.Order) > 0 {
		persist = s.existing(p.Order)
		s.saved = persist
	}
	if m, ok := channel.ParseSortMode(p.SortMode); ok {
		s.mode = m
	} else if persist != nil {
		s.mode = channel.ModeCustom
	}
	s.refresh()

	n := s.SetSelection(p.Channels)
	return persist, n
}

// SetExportOptions sets the template-only export options.
func (s *State) SetExportOptions(includeExtra bool, refrigerant string) {
	s.includeExtra = includeExtra
	if refrigerant != "" {
		s.refrigerant = refrigerant
	}
}

// ToggleIncludeExtra flips the template's include_extra flag.
func (s *State) ToggleIncludeExtra() { s.includeExtra = !s.includeExtra }

// ExportParams is what an export of format would send right now.
func (s *State) ExportParams(f export.Format) export.Params {
	return export.Params{
		Format:       f,
		Codes:        s.Ordered(),
		Window:       s.plot.Window(),
		Step:         s.Effective().Step,
		IncludeExtra: s.includeExtra,
		Refrigerant:  s.refrigerant,
	}
}

// ExportInfo is the export summary panel.
func (s *State) ExportInfo() export.Info {
	return export.Info{
		Channels:     s.sel.Len(),
		Step:         s.Effective(),
		Auto:         s.step.Enabled,
		IncludeExtra: s.includeExtra,
	}
}

// ExportOptions returns the template-only export options.
func (s *State) ExportOptions() (includeExtra bool, refrigerant string) {
	return s.includeExtra, s.refrigerant
}
