package store

import (
	"fmt"
	"strings"
	"time"
)

// DefaultRecentLimit is how many recent folders are kept.
const DefaultRecentLimit = 10

// AddRecent records folder as opened now and trims the list to limit
// entries. Re-adding a folder moves it to the front.
func (s *Store) AddRecent(folder string, limit int) error {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// opened_at is strictly increasing even when the clock is coarse.
	_, err = tx.Exec(`
		INSERT INTO recent_folders (path, opened_at)
		VALUES (?, MAX(?, (SELECT COALESCE(MAX(opened_at), 0) + 1 FROM recent_folders)))
		ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at
	`, folder, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("add recent: %w", err)
	}
	_, err = tx.Exec(`
		DELETE FROM recent_folders WHERE path NOT IN (
			SELECT path FROM recent_folders ORDER BY opened_at DESC LIMIT ?
		)
	`, limit)
	if err != nil {
		return fmt.Errorf("trim recent: %w", err)
	}
	return tx.Commit()
}

// Recent returns recently opened folders, most recent first.
func (s *Store) Recent() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT path FROM recent_folders ORDER BY opened_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RemoveRecent forgets folder.
func (s *Store) RemoveRecent(folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM recent_folders WHERE path = ?`, folder); err != nil {
		return fmt.Errorf("remove recent: %w", err)
	}
	return nil
}
