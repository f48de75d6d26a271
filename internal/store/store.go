package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is the only schema generation this build reads or writes.
const SchemaVersion = 1

// Driver names accepted by WithDriver.
const (
	// DriverPure is modernc.org/sqlite. FTS5 and the trigram tokenizer are
	// always compiled in.
	DriverPure = "sqlite"

	// DriverCgo is github.com/mattn/go-sqlite3. Binaries must be built
	// with -tags sqlite_fts5 for the full-text index to exist.
	DriverCgo = "sqlite3"
)

// DefaultBusyTimeout is how long a writer waits for another writer's lock.
const DefaultBusyTimeout = 5 * time.Second

// Store is a handle on one learnlog database file.
// Uses SQLite with WAL mode so readers never block the writer.
//
// A Store owns a single connection. It is safe for concurrent use, but
// calls are serialized on that connection; independent processes each
// open their own Store.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	driver      string
	busyTimeout time.Duration
	logger      *slog.Logger
}

// WithDriver selects the database/sql driver (DriverPure or DriverCgo).
func WithDriver(name string) Option {
	return func(o *options) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open creates or opens the database at path and makes sure the schema
// exists.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - busy timeout (default 5s) for lock contention
//   - foreign key enforcement
//
// Open is idempotent and safe to run from several processes at once: the
// schema is applied under an immediate write lock and the version row is
// only inserted when absent. The parent directory must already exist.
// Any failure is an *Error with ErrCodeStoreInit.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		driver:      DriverPure,
		busyTimeout: DefaultBusyTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	dsn, err := buildDSN(o.driver, path, o.busyTimeout)
	if err != nil {
		return nil, initError("configure driver", err)
	}

	db, err := sql.Open(o.driver, dsn)
	if err != nil {
		return nil, initError("open database", err)
	}

	// SQLite allows one writer at a time; a single connection per handle
	// keeps transactions and pragmas on the same connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, initError(fmt.Sprintf("connect to %s", path), err)
	}

	if err := applyPragmas(db, o.busyTimeout); err != nil {
		db.Close()
		return nil, initError("apply pragmas", err)
	}

	s := &Store{db: db, path: path, logger: o.logger}
	if err := s.applySchema(context.Background()); err != nil {
		db.Close()
		if IsStoreInit(err) {
			return nil, err
		}
		return nil, initError("apply schema", err)
	}

	s.logger.Debug("store opened", "path", path, "driver", o.driver)
	return s, nil
}

// buildDSN puts the busy timeout and foreign keys in the DSN so they hold
// from the very first statement, in the syntax of each driver.
func buildDSN(driver, path string, busy time.Duration) (string, error) {
	ms := busy.Milliseconds()
	switch driver {
	case DriverPure:
		return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, ms), nil
	case DriverCgo:
		return fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=1", path, ms), nil
	default:
		return "", fmt.Errorf("unknown driver %q", driver)
	}
}

// applyPragmas sets required SQLite configuration.
// busy_timeout goes first so the WAL switch itself waits on a busy file.
func applyPragmas(db *sql.DB, busy time.Duration) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates missing tables, the index and its triggers, then
// checks the version row, all in one immediate transaction.
func (s *Store) applySchema(ctx context.Context) error {
	return s.immediate(ctx, func(c execer) error {
		if _, err := c.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}

		if _, err := c.ExecContext(ctx, `
			INSERT INTO schema_version (version)
			SELECT ? WHERE NOT EXISTS (SELECT 1 FROM schema_version)
		`, SchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}

		rows, err := c.QueryContext(ctx, "SELECT version FROM schema_version")
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		defer rows.Close()

		var versions []int
		for rows.Next() {
			var v int
			if err := rows.Scan(&v); err != nil {
				return fmt.Errorf("scan schema version: %w", err)
			}
			versions = append(versions, v)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}

		if len(versions) != 1 || versions[0] != SchemaVersion {
			return initError(fmt.Sprintf("incompatible schema version %v (want %d)", versions, SchemaVersion), nil)
		}
		return nil
	})
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Remove deletes the database file and its WAL companions.
// Missing files are not an error. The store must be closed first.
func Remove(path string) error {
	var errs []error
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
