// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite log of synchronization runs.
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

	"github.com/pdiddy/issues-ltt/pkg/types"
)

const (
	dbFile         = "history.db"
	exportFile     = "export.yaml"
	defaultLimit   = 20
	timeFormatDisk = time.RFC3339Nano
)

// Store manages the history SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens or creates dir/history.db and its schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("history directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at TEXT NOT NULL,
			owner TEXT NOT NULL,
			repo TEXT NOT NULL,
			source_number INTEGER NOT NULL,
			source_title TEXT,
			aggregate_number INTEGER,
			outcome TEXT NOT NULL,
			extraction_date TEXT,
			items TEXT,
			dry_run INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(owner, repo, source_number)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends run to the history and returns its ID.
func (s *Store) Record(ctx context.Context, run types.SyncRun) (int64, error) {
	if run.RanAt.IsZero() {
		run.RanAt = time.Now()
	}
	itemsJSON, err := json.Marshal(run.Items)
	if err != nil {
		return 0, fmt.Errorf("encoding items: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (ran_at, owner, repo, source_number, source_title, aggregate_number, outcome, extraction_date, items, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RanAt.UTC().Format(timeFormatDisk), run.Owner, run.Repo,
		run.SourceNumber, run.SourceTitle, run.AggregateNumber,
		run.Outcome, run.ExtractionDate, string(itemsJSON), run.DryRun,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// QueryOptions filters List results. Zero values mean no filter.
type QueryOptions struct {
	Owner        string
	Repo         string
	SourceNumber int
	Outcome      string

	// MaxResults limits the number of runs returned (default 20).
	MaxResults int
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.SyncRun, error) {
	query := `SELECT id, ran_at, owner, repo, source_number, source_title, aggregate_number, outcome, extraction_date, items, dry_run
		FROM runs WHERE 1=1`
	var args []any
	if opts.Owner != "" {
		query += ` AND owner = ?`
		args = append(args, opts.Owner)
	}
	if opts.Repo != "" {
		query += ` AND repo = ?`
		args = append(args, opts.Repo)
	}
	if opts.SourceNumber > 0 {
		query += ` AND source_number = ?`
		args = append(args, opts.SourceNumber)
	}
	if opts.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, opts.Outcome)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = defaultLimit
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.SyncRun
	for rows.Next() {
		var (
			r         types.SyncRun
			ranAt     string
			title     sql.NullString
			aggNumber sql.NullInt64
			date      sql.NullString
			items     sql.NullString
		)
		if err := rows.Scan(&r.ID, &ranAt, &r.Owner, &r.Repo, &r.SourceNumber, &title, &aggNumber, &r.Outcome, &date, &items, &r.DryRun); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(timeFormatDisk, ranAt); err == nil {
			r.RanAt = t
		}
		r.SourceTitle = title.String
		r.AggregateNumber = int(aggNumber.Int64)
		r.ExtractionDate = date.String
		if items.Valid && items.String != "" {
			if err := json.Unmarshal([]byte(items.String), &r.Items); err != nil {
				return nil, fmt.Errorf("decoding items of run %d: %w", r.ID, err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
