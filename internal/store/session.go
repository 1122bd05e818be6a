package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/lemure/internal/autostep"
)

// SnapshotVersion is the only snapshot layout this build reads.
const SnapshotVersion = 1

// Snapshot is the part of the viewer state restored on the next start.
type Snapshot struct {
	V        int       `json:"v"`
	SavedAt  time.Time `json:"saved_at"`
	Folder   string    `json:"folder,omitempty"`
	Selected []string  `json:"selected"`
	SortMode string    `json:"sort_mode,omitempty"`
	autostep.Settings
	ShowLegend bool `json:"show_legend"`
}

// SaveSnapshot replaces the stored snapshot. V and SavedAt are filled in.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	snap.V = SnapshotVersion
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	if snap.Selected == nil {
		snap.Selected = []string{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO session (id, data, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`, string(data), snap.SavedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot. ErrNotFound is returned when
// there is none or it was written by an incompatible version.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(`SELECT data FROM session WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.V != SnapshotVersion {
		return nil, ErrNotFound
	}
	snap.Settings = snap.Settings.Sanitize()
	return &snap, nil
}
