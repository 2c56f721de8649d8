// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a log of completed deck generations. Writes are
// best-effort from the caller's point of view: a failed history record must
// never fail the generation it describes.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/casedeck/pkg/types"
)

// Entry is one completed generation.
type Entry struct {
	ID          int64
	CompanyName string
	Type        types.PresentationType
	CaseIDs     []string
	Source      types.SelectionSource
	Filename    string
	CreatedAt   time.Time
}

// Store manages the generation log SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the generation log at path, creating the schema
// and any missing parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_name TEXT NOT NULL,
			presentation_type INTEGER NOT NULL,
			case_ids TEXT NOT NULL,
			source TEXT NOT NULL,
			filename TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one generation to the log.
func (s *Store) Record(ctx context.Context, e Entry) error {
	idsJSON, err := json.Marshal(e.CaseIDs)
	if err != nil {
		return fmt.Errorf("encoding case ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generations (company_name, presentation_type, case_ids, source, filename, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.CompanyName, int(e.Type), string(idsJSON), string(e.Source),
		e.Filename, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// Recent returns the latest n generations, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_name, presentation_type, case_ids, source, filename, created_at
		 FROM generations ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			ptype   int
			idsJSON string
			source  string
			created string
		)
		if err := rows.Scan(&e.ID, &e.CompanyName, &ptype, &idsJSON, &source, &e.Filename, &created); err != nil {
			return nil, fmt.Errorf("scanning generation row: %w", err)
		}
		e.Type = types.PresentationType(ptype)
		e.Source = types.SelectionSource(source)
		if err := json.Unmarshal([]byte(idsJSON), &e.CaseIDs); err != nil {
			return nil, fmt.Errorf("decoding case ids for generation %d: %w", e.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
