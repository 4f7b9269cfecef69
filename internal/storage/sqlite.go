// Package storage provides SQLite-based persistence for room state: the gate
// overlay and switch positions of each visited room, and the player's saved
// motion state per save slot.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/latte-escape/internal/core"
)

// Store manages the SQLite database connection for room state persistence.
type Store struct {
	db *sql.DB
}

// MotionRecord is the saved state of the player in a slot: the room they were
// in and their motion state there.
type MotionRecord struct {
	Slot      string
	RoomID    string
	X, Y      float64
	Facing    string
	Travel    float64
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS room_gates (
			slot TEXT NOT NULL,
			room_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			open INTEGER NOT NULL,
			PRIMARY KEY (slot, room_id, x, y)
		);

		CREATE TABLE IF NOT EXISTS room_switches (
			slot TEXT NOT NULL,
			room_id TEXT NOT NULL,
			switch_id TEXT NOT NULL,
			on_state INTEGER NOT NULL,
			PRIMARY KEY (slot, room_id, switch_id)
		);

		CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			facing TEXT NOT NULL,
			travel REAL NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGates replaces the stored gate overlay of a room.
func (s *Store) SaveGates(slot, roomID string, gates map[core.Coord]bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM room_gates WHERE slot = ? AND room_id = ?", slot, roomID); err != nil {
		return fmt.Errorf("storage: cannot clear gates: %w", err)
	}
	for c, open := range gates {
		if _, err := tx.Exec(
			"INSERT INTO room_gates (slot, room_id, x, y, open) VALUES (?, ?, ?, ?, ?)",
			slot, roomID, c.X, c.Y, open,
		); err != nil {
			return fmt.Errorf("storage: cannot save gate %v: %w", c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit gates: %w", err)
	}
	return nil
}

// LoadGates returns the stored gate overlay of a room. A room never saved
// yields an empty map.
func (s *Store) LoadGates(slot, roomID string) (map[core.Coord]bool, error) {
	rows, err := s.db.Query(
		"SELECT x, y, open FROM room_gates WHERE slot = ? AND room_id = ?",
		slot, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query gates: %w", err)
	}
	defer rows.Close()

	gates := make(map[core.Coord]bool)
	for rows.Next() {
		var x, y int
		var open bool
		if err := rows.Scan(&x, &y, &open); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		gates[core.C(x, y)] = open
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return gates, nil
}

// SaveSwitches replaces the stored switch positions of a room.
func (s *Store) SaveSwitches(slot, roomID string, switches map[string]bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM room_switches WHERE slot = ? AND room_id = ?", slot, roomID); err != nil {
		return fmt.Errorf("storage: cannot clear switches: %w", err)
	}
	for id, on := range switches {
		if _, err := tx.Exec(
			"INSERT INTO room_switches (slot, room_id, switch_id, on_state) VALUES (?, ?, ?, ?)",
			slot, roomID, id, on,
		); err != nil {
			return fmt.Errorf("storage: cannot save switch %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit switches: %w", err)
	}
	return nil
}

// LoadSwitches returns the stored switch positions of a room.
func (s *Store) LoadSwitches(slot, roomID string) (map[string]bool, error) {
	rows, err := s.db.Query(
		"SELECT switch_id, on_state FROM room_switches WHERE slot = ? AND room_id = ?",
		slot, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query switches: %w", err)
	}
	defer rows.Close()

	switches := make(map[string]bool)
	for rows.Next() {
		var id string
		var on bool
		if err := rows.Scan(&id, &on); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		switches[id] = on
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return switches, nil
}

// SaveMotion stores the player's motion state for a slot, replacing any
// earlier save in that slot.
func (s *Store) SaveMotion(rec MotionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO saves (slot, room_id, x, y, facing, travel, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET
		   room_id = excluded.room_id,
		   x = excluded.x,
		   y = excluded.y,
		   facing = excluded.facing,
		   travel = excluded.travel,
		   updated_at = excluded.updated_at`,
		rec.Slot, rec.RoomID, rec.X, rec.Y, rec.Facing, rec.Travel,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save motion: %w", err)
	}
	return nil
}

// LoadMotion returns the save in a slot, or nil if the slot is empty.
func (s *Store) LoadMotion(slot string) (*MotionRecord, error) {
	var rec MotionRecord
	var updatedAt any

	err := s.db.QueryRow(
		`SELECT slot, room_id, x, y, facing, travel, updated_at
		 FROM saves
		 WHERE slot = ?`,
		slot,
	).Scan(&rec.Slot, &rec.RoomID, &rec.X, &rec.Y, &rec.Facing, &rec.Travel, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query save: %w", err)
	}

	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

// ListSaves returns every save, most recent first.
func (s *Store) ListSaves() ([]MotionRecord, error) {
	rows, err := s.db.Query(
		`SELECT slot, room_id, x, y, facing, travel, updated_at
		 FROM saves
		 ORDER BY updated_at DESC, slot`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	defer rows.Close()

	var saves []MotionRecord
	for rows.Next() {
		var rec MotionRecord
		var updatedAt any
		if err := rows.Scan(&rec.Slot, &rec.RoomID, &rec.X, &rec.Y, &rec.Facing, &rec.Travel, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.UpdatedAt = parseTime(updatedAt)
		saves = append(saves, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return saves, nil
}

// ClearSaves deletes everything stored for a slot. An empty slot clears all
// slots.
func (s *Store) ClearSaves(slot string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"saves", "room_gates", "room_switches"} {
		query := "DELETE FROM " + table
		args := []any{}
		if slot != "" {
			query += " WHERE slot = ?"
			args = append(args, slot)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("storage: cannot clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
