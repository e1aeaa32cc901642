// Package store keeps a history of front-end runs in SQLite.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/syntax"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

// Run is one recorded tokenize/parse of a source file. Tokens, Tree and
// Diagnostics hold JSON documents in the interchange formats.
type Run struct {
	ID          string
	Path        string
	SourceHash  string // hex SHA-256 of the source text
	Tokens      string
	Tree        string
	Diagnostics string
	Memory      string // final variables as JSON, empty if the program was not run
	TokenCount  int
	DiagCount   int
	CreatedAt   time.Time
}

// NewRun builds a Run from the results of a front-end pass.
func NewRun(path, src string, toks []syntax.Token, prog *syntax.Program, diags []syntax.Diagnostic) (*Run, error) {
	sum := sha256.Sum256([]byte(src))
	r := &Run{
		ID:         uuid.NewString(),
		Path:       path,
		SourceHash: hex.EncodeToString(sum[:]),
		TokenCount: len(toks),
		DiagCount:  len(diags),
		CreatedAt:  time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := interchange.EncodeTokens(&buf, interchange.JSON, toks); err != nil {
		return nil, fmt.Errorf("encode tokens: %w", err)
	}
	r.Tokens = buf.String()

	buf.Reset()
	if prog != nil {
		if err := interchange.EncodeTree(&buf, interchange.JSON, prog); err != nil {
			return nil, fmt.Errorf("encode tree: %w", err)
		}
		r.Tree = buf.String()
	}

	buf.Reset()
	if err := interchange.EncodeDiagnostics(&buf, interchange.JSON, diags); err != nil {
		return nil, fmt.Errorf("encode diagnostics: %w", err)
	}
	r.Diagnostics = buf.String()
	return r, nil
}

// Filter selects runs for List.
type Filter struct {
	Path       string
	Since      time.Time
	FailedOnly bool // runs with at least one diagnostic
	Limit      int
	Offset     int
}

// Store is a SQLite-backed run history. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		tokens TEXT NOT NULL,
		tree TEXT,
		diagnostics TEXT NOT NULL,
		memory TEXT,
		token_count INTEGER NOT NULL,
		diag_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts r, filling in the ID and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, r *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, path, source_hash, tokens, tree, diagnostics, memory,
			token_count, diag_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Path, r.SourceHash, r.Tokens, nullString(r.Tree), r.Diagnostics, nullString(r.Memory),
		r.TokenCount, r.DiagCount, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

const runColumns = `id, path, source_hash, tokens, tree, diagnostics, memory,
	token_count, diag_count, created_at`

// Get returns the run whose ID is id or starts with id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		return nil, ErrNotFound
	}
	pattern := strings.NewReplacer("%", `\%`, "_", `\_`, `\`, `\\`).Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return runs[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
}

// List returns runs matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []interface{}

	if f.Path != "" {
		query += " AND path = ?"
		args = append(args, f.Path)
	}
	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, f.Since.UTC())
	}
	if f.FailedOnly {
		query += " AND diag_count > 0"
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	} else if f.Offset > 0 {
		query += " LIMIT -1"
	}
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Prune deletes runs older than olderThan and returns how many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		var r Run
		var tree, memory sql.NullString
		if err := rows.Scan(&r.ID, &r.Path, &r.SourceHash, &r.Tokens, &tree, &r.Diagnostics, &memory,
			&r.TokenCount, &r.DiagCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Tree = tree.String
		r.Memory = memory.String
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
