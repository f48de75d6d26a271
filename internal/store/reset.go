package store

import (
	"context"
	"fmt"
)

// dropOrder lists every schema object, dependents first.
var dropOrder = []string{
	"DROP TRIGGER IF EXISTS concepts_ai",
	"DROP TRIGGER IF EXISTS concepts_ad",
	"DROP TRIGGER IF EXISTS concepts_au",
	"DROP TABLE IF EXISTS concepts_fts",
	"DROP TABLE IF EXISTS gotchas",
	"DROP TABLE IF EXISTS concepts",
	"DROP TABLE IF EXISTS responses",
	"DROP TABLE IF EXISTS code_changes",
	"DROP TABLE IF EXISTS commands",
	"DROP TABLE IF EXISTS patterns",
	"DROP TABLE IF EXISTS sessions",
	"DROP TABLE IF EXISTS schema_version",
}

// RemoveAll drops every table, index and trigger in one transaction.
// It is the uninstall primitive: afterwards the handle only supports
// Close, and the next Open recreates an empty schema.
func (s *Store) RemoveAll(ctx context.Context) error {
	err := s.immediate(ctx, func(c execer) error {
		for _, stmt := range dropOrder {
			if _, err := c.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove all: %w", err)
	}
	s.logger.Info("store cleared", "path", s.path)
	return nil
}
