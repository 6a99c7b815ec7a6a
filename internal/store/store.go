// Package store persists ranking runs and their results in a SQL database.
// SQLite is the default backend; MySQL is supported for shared result
// stores.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/pulsar/internal/pageid"
	"github.com/papapumpkin/pulsar/internal/rank"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("store: run not found")

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("store: unsupported driver")

// Run describes one completed ranking run.
type Run struct {
	ID            string
	Network       string
	Ranker        string
	Alpha         float64
	Tolerance     float64
	MaxIterations int
	Threads       int
	Iterations    int
	Difference    float64
	Pages         int
	StartedAt     time.Time
	Duration      time.Duration
}

// Store is a handle on a result database. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by driver and dsn and creates the
// schema if it does not exist. For SQLite the dsn is a file path whose
// parent directory is created on demand.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db     *sql.DB
		schema []string
		err    error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
		schema = sqliteSchema
	case DriverMySQL:
		db, err = openMySQL(ctx, dsn)
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema: %w", err)
		}
	}
	return &Store{db: db, driver: driver}, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite has a single writer and the pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	return db, nil
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect mysql: %w", err)
	}
	return db, nil
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records run and its ranks in a single transaction. A run with an
// empty ID is assigned a fresh UUID. The stored run is returned.
func (s *Store) SaveRun(ctx context.Context, run Run, ranks []rank.PageRank) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const insertRun = `
		INSERT INTO runs (id, network, ranker, alpha, tolerance, max_iterations,
			threads, iterations, difference, pages, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID, run.Network, run.Ranker, run.Alpha, run.Tolerance, run.MaxIterations,
		run.Threads, run.Iterations, run.Difference, run.Pages,
		run.StartedAt.UnixNano(), int64(run.Duration),
	); err != nil {
		return Run{}, fmt.Errorf("store: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO ranks (run_id, page_id, position, score) VALUES (?, ?, ?, ?)")
	if err != nil {
		return Run{}, fmt.Errorf("store: prepare rank insert: %w", err)
	}
	defer stmt.Close()

	for i, pr := range ranks {
		if _, err := stmt.ExecContext(ctx, run.ID, pr.ID.String(), i, pr.Rank); err != nil {
			return Run{}, fmt.Errorf("store: insert rank %s: %w", pr.ID.Short(12), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("store: commit run %s: %w", run.ID, err)
	}
	return run, nil
}

const runColumns = `id, network, ranker, alpha, tolerance, max_iterations,
	threads, iterations, difference, pages, started_at, duration_ns`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r         Run
		startedAt int64
		duration  int64
	)
	err := row.Scan(&r.ID, &r.Network, &r.Ranker, &r.Alpha, &r.Tolerance, &r.MaxIterations,
		&r.Threads, &r.Iterations, &r.Difference, &r.Pages, &startedAt, &duration)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = time.Unix(0, startedAt)
	r.Duration = time.Duration(duration)
	return r, nil
}

// Runs returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

// Run returns the run with the given ID, or ErrRunNotFound.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("store: get run %s: %w", id, err)
	}
	return r, nil
}

// Ranks returns the top ranks of a run ordered by rank, highest first. Ties
// keep the order the ranks were saved in. A top of zero or less returns every
// rank.
func (s *Store) Ranks(ctx context.Context, id string, top int) ([]rank.PageRank, error) {
	if _, err := s.Run(ctx, id); err != nil {
		return nil, err
	}

	q := "SELECT page_id, score FROM ranks WHERE run_id = ? ORDER BY score DESC, position"
	args := []any{id}
	if top > 0 {
		q += " LIMIT ?"
		args = append(args, top)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list ranks %s: %w", id, err)
	}
	defer rows.Close()

	var out []rank.PageRank
	for rows.Next() {
		var (
			pid string
			pr  rank.PageRank
		)
		if err := rows.Scan(&pid, &pr.Rank); err != nil {
			return nil, fmt.Errorf("store: scan rank: %w", err)
		}
		pr.ID = pageid.ID(pid)
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list ranks %s: %w", id, err)
	}
	return out, nil
}
