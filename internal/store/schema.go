package store

// Timestamps and durations are stored as integer nanoseconds so both
// dialects round-trip them without driver-specific time parsing.

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS runs (
    id             TEXT PRIMARY KEY,
    network        TEXT NOT NULL,
    ranker         TEXT NOT NULL,
    alpha          REAL NOT NULL,
    tolerance      REAL NOT NULL,
    max_iterations INTEGER NOT NULL,
    threads        INTEGER NOT NULL,
    iterations     INTEGER NOT NULL,
    difference     REAL NOT NULL,
    pages          INTEGER NOT NULL,
    started_at     INTEGER NOT NULL,
    duration_ns    INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS ranks (
    run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    page_id  TEXT NOT NULL,
    position INTEGER NOT NULL,
    score    REAL NOT NULL,
    PRIMARY KEY (run_id, position)
)`, `
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
}

var mysqlSchema = []string{`
CREATE TABLE IF NOT EXISTS runs (
    id             VARCHAR(36) PRIMARY KEY,
    network        VARCHAR(1024) NOT NULL,
    ranker         VARCHAR(64) NOT NULL,
    alpha          DOUBLE NOT NULL,
    tolerance      DOUBLE NOT NULL,
    max_iterations INT NOT NULL,
    threads        INT NOT NULL,
    iterations     INT NOT NULL,
    difference     DOUBLE NOT NULL,
    pages          INT NOT NULL,
    started_at     BIGINT NOT NULL,
    duration_ns    BIGINT NOT NULL,
    INDEX idx_runs_started (started_at)
)`, `
CREATE TABLE IF NOT EXISTS ranks (
    run_id   VARCHAR(36) NOT NULL,
    page_id  VARCHAR(255) NOT NULL,
    position INT NOT NULL,
    score    DOUBLE NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
)`,
}
