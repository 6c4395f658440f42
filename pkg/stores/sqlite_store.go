package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists solve runs and sweeps in SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: cfg.Path}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// CreateRun creates a run record in running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (id, backend, problem, sweep_id, status, objective, iterations, duration_ms, error, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Backend,
		run.Problem,
		run.SweepID,
		run.Status,
		run.Objective,
		run.Iterations,
		run.DurationMS,
		run.Error,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the outcome of a run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, objective *float64, iterations int, duration time.Duration, errMsg *string) error {
	query := `
		UPDATE runs
		SET status = ?, objective = ?, iterations = ?, duration_ms = ?, error = ?, completed_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := s.db.ExecContext(ctx, query, status, objective, iterations, duration.Milliseconds(), errMsg, &now, id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, backend, problem, sweep_id, status, objective, iterations, duration_ms, error, started_at, completed_at, created_at
		FROM runs
		WHERE id = ?
	`
	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Backend,
		&run.Problem,
		&run.SweepID,
		&run.Status,
		&run.Objective,
		&run.Iterations,
		&run.DurationMS,
		&run.Error,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns lists runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*Run, error) {
	query := `
		SELECT id, backend, problem, sweep_id, status, objective, iterations, duration_ms, error, started_at, completed_at, created_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID,
			&run.Backend,
			&run.Problem,
			&run.SweepID,
			&run.Status,
			&run.Objective,
			&run.Iterations,
			&run.DurationMS,
			&run.Error,
			&run.StartedAt,
			&run.CompletedAt,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CreateSweep creates a sweep record.
func (s *SQLiteStore) CreateSweep(ctx context.Context, sweep *Sweep) error {
	query := `
		INSERT INTO sweeps (id, backend, problem, param, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sweep.ID,
		sweep.Backend,
		sweep.Problem,
		sweep.Param,
		sweep.Points,
		sweep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep: %w", err)
	}
	return nil
}

// ListSweepRuns lists the runs belonging to one sweep, oldest first.
func (s *SQLiteStore) ListSweepRuns(ctx context.Context, sweepID string) ([]*Run, error) {
	query := `
		SELECT id, backend, problem, sweep_id, status, objective, iterations, duration_ms, error, started_at, completed_at, created_at
		FROM runs
		WHERE sweep_id = ?
		ORDER BY started_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID,
			&run.Backend,
			&run.Problem,
			&run.SweepID,
			&run.Status,
			&run.Objective,
			&run.Iterations,
			&run.DurationMS,
			&run.Error,
			&run.StartedAt,
			&run.CompletedAt,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
