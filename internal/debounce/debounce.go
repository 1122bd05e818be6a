// Package debounce coalesces bursts of requests into one delayed message.
//
// Every call site uses its own Key. Schedule bumps the key's sequence number
// and returns a tea.Cmd that delivers a Fired message after the delay; when
// it arrives, Fire reports true only for the newest sequence. Older ticks
// still arrive but are ignored, so there is nothing to cancel.
//
// A Debouncer is owned by the Bubble Tea model and must only be touched from
// Update.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Key names a debounced call site.
type Key string

// Fired is delivered when a scheduled delay elapses.
type Fired struct {
	Key Key
	Seq uint64
}

// Debouncer tracks the newest sequence per key.
type Debouncer struct {
	seq   map[Key]uint64
	fired map[Key]uint64
}

// New returns an empty Debouncer.
func New() *Debouncer {
	return &Debouncer{
		seq:   make(map[Key]uint64),
		fired: make(map[Key]uint64),
	}
}

// Schedule supersedes any pending request for k and returns the tick for the
// new one.
func (d *Debouncer) Schedule(k Key, delay time.Duration) tea.Cmd {
	d.seq[k]++
	seq := d.seq[k]
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return Fired{Key: k, Seq: seq}
	})
}

// Fire reports whether msg is the newest request for its key. It returns true
// at most once per sequence.
func (d *Debouncer) Fire(msg Fired) bool {
	if msg.Seq != d.seq[msg.Key] || d.fired[msg.Key] == msg.Seq {
		return false
	}
	d.fired[msg.Key] = msg.Seq
	return true
}

// Cancel drops any pending request for k.
func (d *Debouncer) Cancel(k Key) {
	d.seq[k]++
	d.fired[k] = d.seq[k]
}

// Pending reports whether a request for k is scheduled and has not fired.
func (d *Debouncer) Pending(k Key) bool {
	return d.seq[k] != d.fired[k]
}

// Seq returns the newest sequence scheduled for k.
func (d *Debouncer) Seq(k Key) uint64 { return d.seq[k] }
