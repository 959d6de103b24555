package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/scriptdeps/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Export describes one saved dataset snapshot.
type Export struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SourcePath  string    `json:"source_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ScriptCount int       `json:"script_count"`
	CallCount   int       `json:"call_count"`
}

// Store writes dataset exports to SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a store. logger may be nil.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger, now: time.Now}
}

// NewStoreWithDB wraps an existing connection. The schema is not migrated.
func NewStoreWithDB(db *sql.DB, logger *slog.Logger) *Store {
	s := NewStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one connection keeps an in-memory database alive across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened export database", slog.String("path", path))
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveExport writes ds as a new export in a single transaction.
func (s *Store) SaveExport(ctx context.Context, ds *core.Dataset, source, sourcePath string) (*Export, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	exp := &Export{
		ID:         uuid.New().String(),
		Source:     source,
		SourcePath: sourcePath,
		CreatedAt:  s.now().UTC().Truncate(time.Second),
	}
	for _, rec := range ds.Records() {
		exp.ScriptCount++
		exp.CallCount += len(rec.Calls)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (id, source, source_path, created_at, script_count, call_count) VALUES (?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.Source, exp.SourcePath, exp.CreatedAt.Format(time.RFC3339), exp.ScriptCount, exp.CallCount,
	); err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	for i, rec := range ds.Records() {
		if err := insertScript(ctx, tx, exp.ID, i, rec); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export: %w", err)
	}

	s.logger.Debug("saved export",
		slog.String("id", exp.ID),
		slog.Int("scripts", exp.ScriptCount),
		slog.Int("calls", exp.CallCount))
	return exp, nil
}

func insertScript(ctx context.Context, tx *sql.Tx, exportID string, pos int, rec *core.ScriptRecord) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scripts (export_id, name, position) VALUES (?, ?, ?)`,
		exportID, rec.Name, pos,
	); err != nil {
		return fmt.Errorf("failed to insert script %s: %w", rec.Name, err)
	}

	jobs := []struct {
		kind string
		list []string
	}{{"da2", rec.DA2Jobs}, {"ops", rec.OpsJobs}}
	for _, group := range jobs {
		for i, job := range group.list {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO script_jobs (export_id, script, kind, job, position) VALUES (?, ?, ?, ?, ?)`,
				exportID, rec.Name, group.kind, job, i,
			); err != nil {
				return fmt.Errorf("failed to insert %s job for %s: %w", group.kind, rec.Name, err)
			}
		}
	}

	for i, callee := range rec.Calls {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO script_calls (export_id, caller, callee, position) VALUES (?, ?, ?, ?)`,
			exportID, rec.Name, callee, i,
		); err != nil {
			return fmt.Errorf("failed to insert call %s -> %s: %w", rec.Name, callee, err)
		}
	}
	return nil
}

// ListExports returns all exports, newest first.
func (s *Store) ListExports(ctx context.Context) ([]Export, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, source_path, created_at, script_count, call_count
		 FROM exports ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Export
	for rows.Next() {
		var exp Export
		var created string
		if err := rows.Scan(&exp.ID, &exp.Source, &exp.SourcePath, &created, &exp.ScriptCount, &exp.CallCount); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		if exp.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("export %s: bad created_at %q: %w", exp.ID, created, err)
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}
