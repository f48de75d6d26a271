package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
)

// stamp renders a timestamp for storage. The zero time means "now".
func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return criteria.FormatTime(t)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return criteria.FormatTime(*t)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// columnList renders the table's catalog columns for SELECT or RETURNING.
func columnList(t criteria.Table) string {
	return strings.Join(t.Columns(), ", ")
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return criteria.ParseTime(s)
}

// parseNullTime parses a nullable stored timestamp.
func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := criteria.ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// unmarshalTags decodes a tags column.
func unmarshalTags(s string) ([]string, error) {
	tags, err := criteria.DecodeTags(s)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return tags, nil
}
