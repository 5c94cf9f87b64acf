package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run represents one download reconciliation
type Run struct {
	RunID       int64
	StartedAt   time.Time
	ShortName   string
	DownloadDir string
	Total       int
	Skipped     int
	Removed     int
	Fetched     int
}

// RunGranule is the decision taken for one granule. RemoteMB and LocalMB are nil when unknown.
type RunGranule struct {
	Filename string
	URL      string
	RemoteMB *float64
	LocalMB  *float64
	Decision string
	Fetched  bool
}

// RecordRun stores a run and its granules in one transaction and returns the run ID.
func (db *DB) RecordRun(run Run, granules []RunGranule) (int64, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, short_name, download_dir, total, skipped, removed, fetched)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.ShortName, run.DownloadDir, run.Total, run.Skipped, run.Removed, run.Fetched)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_granules (run_id, filename, url, remote_mb, local_mb, decision, fetched)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare granule insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range granules {
		if _, err := stmt.Exec(runID, g.Filename, g.URL, nullFloat(g.RemoteMB), nullFloat(g.LocalMB), g.Decision, g.Fetched); err != nil {
			return 0, fmt.Errorf("failed to insert granule %s: %w", g.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, started_at, short_name, download_dir, total, skipped, removed, fetched
		FROM runs
		ORDER BY started_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	row := db.QueryRow(`
		SELECT run_id, started_at, short_name, download_dir, total, skipped, removed, fetched
		FROM runs
		WHERE run_id = ?
	`, runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	return r, err
}

// GetRunGranules retrieves the granule decisions of a run in insertion order
func (db *DB) GetRunGranules(runID int64) ([]RunGranule, error) {
	rows, err := db.Query(`
		SELECT filename, url, remote_mb, local_mb, decision, fetched
		FROM run_granules
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run granules: %w", err)
	}
	defer rows.Close()

	var out []RunGranule
	for rows.Next() {
		var g RunGranule
		var filename, url sql.NullString
		var remote, local sql.NullFloat64
		if err := rows.Scan(&filename, &url, &remote, &local, &g.Decision, &g.Fetched); err != nil {
			return nil, fmt.Errorf("failed to scan run granule: %w", err)
		}
		g.Filename = filename.String
		g.URL = url.String
		g.RemoteMB = floatPtr(remote)
		g.LocalMB = floatPtr(local)
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	if err := s.Scan(&r.RunID, &r.StartedAt, &r.ShortName, &r.DownloadDir,
		&r.Total, &r.Skipped, &r.Removed, &r.Fetched); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &r, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
