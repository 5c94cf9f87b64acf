package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs: one row per download reconciliation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    short_name TEXT NOT NULL,
    download_dir TEXT NOT NULL,
    total INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    removed INTEGER NOT NULL DEFAULT 0,
    fetched INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Run granules: per-granule decision within a run
CREATE TABLE IF NOT EXISTS run_granules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    filename TEXT,
    url TEXT,
    remote_mb REAL,              -- NULL when the catalog size was absent or unreadable
    local_mb REAL,               -- NULL when no local copy existed
    decision TEXT NOT NULL,      -- skip, refetch, fetch, invalid
    fetched BOOLEAN DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_granules_run ON run_granules(run_id);
CREATE INDEX IF NOT EXISTS idx_run_granules_decision ON run_granules(decision);
`
