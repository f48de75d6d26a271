package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// execer is the statement surface shared by *sql.DB, *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Source is something reads can run against: a *Store or a *Tx.
//
// This is a sealed interface: only types in this package implement it.
type Source interface {
	conn() execer
}

func (s *Store) conn() execer { return s.db }

// Tx is a transaction handle passed to Update and View callbacks.
// It is only valid inside the callback.
type Tx struct {
	c execer
}

func (tx *Tx) conn() execer { return tx.c }

// Update runs fn in a write transaction.
//
// The transaction starts with BEGIN IMMEDIATE, so it holds the write lock
// from the start (waiting up to the busy timeout) and can never fail a
// read-to-write lock upgrade. fn's error rolls everything back.
//
// fn must use tx for every statement; calling Store methods from inside fn
// would wait on the store's only connection.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.immediate(ctx, func(c execer) error {
		return fn(&Tx{c: c})
	})
}

// View runs fn in a read transaction, giving it one consistent snapshot.
// Readers never block the writer under WAL.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{c: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("end read: %w", err)
	}
	return nil
}

// immediate runs fn between BEGIN IMMEDIATE and COMMIT on a dedicated
// connection. database/sql only issues deferred BEGINs, so the
// transaction is driven by hand.
func (s *Store) immediate(ctx context.Context, fn func(c execer) error) (err error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin write: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		// Rollback uses a fresh context: ctx may be the reason we failed.
		if _, rbErr := c.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(c); err != nil {
		return err
	}
	if _, err = c.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
