// Package ui provides the Bubble Tea TUI for lemure.
package ui

import (
	"time"

	"github.com/abelbrown/lemure/internal/autostep"
	"github.com/abelbrown/lemure/internal/backend"
	"github.com/abelbrown/lemure/internal/export"
	"github.com/abelbrown/lemure/internal/plot"
)

// DatasetLoaded is sent when the backend has loaded a test folder.
type DatasetLoaded struct {
	Folder  string
	Dataset *backend.Dataset
	Elapsed time.Duration
	Err     error
}

// SeriesLoaded carries the samples for one redraw request.
type SeriesLoaded struct {
	Req    plot.Request
	Series *backend.Series
	Err    error
}

// StatsLoaded carries an exact point count for the range-stats token.
type StatsLoaded struct {
	Token uint64
	Stats autostep.Stats
	Err   error
}

// OrderSaved is sent after the custom order was persisted.
type OrderSaved struct {
	Order []string
	Err   error
}

// SnapshotSaved is sent after the last-session snapshot was written.
type SnapshotSaved struct {
	Err error
}

// ExportDone is sent when an export finished or failed.
type ExportDone struct {
	Format export.Format
	Result *export.Result
	Err    error
}

// CatalogLoaded carries the saved named orders and presets.
type CatalogLoaded struct {
	Catalog *backend.Catalog
	Err     error
}

// NamedOrderSaved is sent after a named order was stored.
type NamedOrderSaved struct {
	Key   string
	Name  string
	Order []string
	Err   error
}

// NamedOrderLoaded carries a named order picked by the user.
type NamedOrderLoaded struct {
	Order *backend.NamedOrder
	Err   error
}

// PresetSaved is sent after a preset was stored.
type PresetSaved struct {
	Key  string
	Name string
	Err  error
}

// PresetLoaded carries a preset picked by the user.
type PresetLoaded struct {
	Name   string
	Preset *backend.Preset
	Err    error
}

// PresetDeleted is sent after a preset was removed.
type PresetDeleted struct {
	Key string
	Err error
}

// RecentLoaded carries the recently opened folders, newest first.
type RecentLoaded struct {
	Folders []string
	Err     error
}

// CommandPanicked is sent in place of a command's result when it panicked.
type CommandPanicked struct {
	Err error
}

// toastExpired clears the toast with the matching sequence.
type toastExpired struct {
	seq int
}
