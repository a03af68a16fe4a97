package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
)

// Snapshot is everything needed to resume an interrupted attempt: the frozen
// paper triple, the attempt id, the answers so far, and the local clock
// baseline. Aborted marks a deliberate walk-away.
type Snapshot struct {
	AttemptID       uint                       `json:"attempt_id"`
	PaperConfig     generator.PaperConfig      `json:"paper_config"`
	GeneratedBlocks []generator.GeneratedBlock `json:"generated_blocks"`
	Seed            int64                      `json:"seed"`
	Answers         map[string]string          `json:"answers"`
	StartedAt       time.Time                  `json:"started_at"`
	Aborted         bool                       `json:"aborted"`
	SavedAt         time.Time                  `json:"saved_at"`
}

// PendingPaper is the just-compiled preview held between compile and attempt
// creation. It lives in its own row so a failed attempt creation does not
// lose the compiled question set.
type PendingPaper struct {
	Request dto.AttemptCreateDTO `json:"request"`
	SavedAt time.Time            `json:"saved_at"`
}

// SnapshotStore persists one snapshot and one pending paper in a local
// sqlite file. Single fixed key per table: the runtime tracks at most one
// session at a time.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS session_snapshot (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pending_paper (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			payload TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing snapshot store: %w", err)
		}
	}
	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error { return s.db.Close() }

// Save overwrites the snapshot slot. SavedAt is stamped here so staleness
// checks always measure from the last write.
func (s *SnapshotStore) Save(snap *Snapshot) error {
	snap.SavedAt = time.Now()
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO session_snapshot (slot, payload) VALUES (1, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	return err
}

// Restore returns the stored snapshot, or nil when the slot is empty.
func (s *SnapshotStore) Restore() (*Snapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM session_snapshot WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SnapshotStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session_snapshot WHERE slot = 1`)
	return err
}

// SaveHandoff stores the compiled paper awaiting attempt creation.
func (s *SnapshotStore) SaveHandoff(pending *PendingPaper) error {
	pending.SavedAt = time.Now()
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encoding pending paper: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO pending_paper (slot, payload) VALUES (1, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	return err
}

// TakeHandoff returns the pending paper and deletes it in the same
// transaction, so it can be consumed exactly once. Nil when empty.
func (s *SnapshotStore) TakeHandoff() (*PendingPaper, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRow(`SELECT payload FROM pending_paper WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM pending_paper WHERE slot = 1`); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	var pending PendingPaper
	if err := json.Unmarshal([]byte(payload), &pending); err != nil {
		return nil, fmt.Errorf("decoding pending paper: %w", err)
	}
	return &pending, nil
}

// PeekHandoff reads the pending paper without consuming it, for retrying a
// failed attempt creation.
func (s *SnapshotStore) PeekHandoff() (*PendingPaper, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM pending_paper WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pending PendingPaper
	if err := json.Unmarshal([]byte(payload), &pending); err != nil {
		return nil, fmt.Errorf("decoding pending paper: %w", err)
	}
	return &pending, nil
}
