// Package otel provides structured observability for lemure.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the log panel.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Rank orders levels for filtering; unknown levels rank as info.
func (l Level) Rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Dataset events
	KindLoadStart    EventKind = "load.start"
	KindLoadComplete EventKind = "load.complete"
	KindLoadError    EventKind = "load.error"
	KindRestore      EventKind = "load.restore"
	KindFolderChange EventKind = "load.folder_changed"

	// Plot events
	KindRedrawStart      EventKind = "plot.redraw_start"
	KindRedrawComplete   EventKind = "plot.redraw_complete"
	KindRedrawError      EventKind = "plot.redraw_error"
	KindRedrawSuperseded EventKind = "plot.superseded"
	KindViewport         EventKind = "plot.viewport"

	// Range stats
	KindStatsApplied EventKind = "stats.applied"
	KindStatsStale   EventKind = "stats.stale"
	KindStatsError   EventKind = "stats.error"

	// Order and preset persistence
	KindOrderSave   EventKind = "order.save"
	KindOrderError  EventKind = "order.error"
	KindPresetApply EventKind = "order.preset_apply"

	// Exports
	KindExportStart    EventKind = "export.start"
	KindExportComplete EventKind = "export.complete"
	KindExportError    EventKind = "export.error"

	// Backend requests, one per call with its latency
	KindRequest EventKind = "backend.request"

	// UI events
	KindKeyPress EventKind = "ui.key"
	KindNotice   EventKind = "ui.notice"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
	KindPanic    EventKind = "sys.panic"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "viewer", "ui", "coord", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Seq       uint64         `json:"seq,omitempty"`        // redraw sequence or stats token
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Folder    string         `json:"folder,omitempty"`
	Channels  int            `json:"channels,omitempty"`
	StartMs   int64          `json:"start_ms,omitempty"`
	EndMs     int64          `json:"end_ms,omitempty"`
	Step      int            `json:"step,omitempty"`
	Points    int            `json:"points,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
