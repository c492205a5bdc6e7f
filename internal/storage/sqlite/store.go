// Package sqlite implements the storage interface using SQLite.
//
// Layout:
//   - store.go: Store struct, New() constructor, pragmas, transactions
//   - schema.go: database schema
//   - scope.go: tenant predicate injection and create-time stamping
//   - identity.go: tenants, users, memberships, invitations
//   - projects.go / features.go / plannings.go / commitments.go: CRUD
//   - votes.go: votes, estimations, estimation history
//   - status.go: lifecycle transitions, history trail, repair pass
//   - transaction.go: storage.Transaction implementation
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"
)

// Store implements the storage.Storage interface using SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
	closed atomic.Bool
}

// New creates a new SQLite storage backend. The parent directory is
// created if needed. ":memory:" opens an isolated in-memory database
// limited to a single connection so all statements share one view.
func New(ctx context.Context, path string) (*Store, error) {
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// In-memory databases are per-connection; a pool of size one is
		// the only way every query sees the same data.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	if inMemory {
		// WAL requires a file; fall back to the default journal.
		pragmas = pragmas[1:]
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: path}, nil
}

// Path returns the database path this store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection. Safe to call more than once.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

const beginImmediateMaxElapsed = 10 * time.Second

// beginImmediate starts an IMMEDIATE transaction on a dedicated
// connection, retrying with exponential backoff while the database is
// busy. IMMEDIATE acquires the write lock up front so multi-statement
// writes cannot deadlock against each other mid-flight.
//
// database/sql's BeginTx cannot express transaction modes, so the
// statement goes through raw Exec on the connection.
func beginImmediate(ctx context.Context, conn *sql.Conn) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = beginImmediateMaxElapsed

	return backoff.Retry(func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err == nil {
			return nil
		}
		if strings.Contains(err.Error(), "busy") || strings.Contains(err.Error(), "locked") {
			return err // retryable
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}

// withImmediateTx runs fn on a dedicated connection inside a BEGIN
// IMMEDIATE transaction and commits on success. Rollback uses a
// background context so cleanup outlives caller cancellation.
func (s *Store) withImmediateTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := beginImmediate(ctx, conn); err != nil {
		return fmt.Errorf("failed to begin immediate transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
