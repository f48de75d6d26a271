package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
)

// alias is the table alias used for the queried table in every statement.
const alias = "t"

// Compile converts a criteria query to parameterized SQL for SQLite.
//
// The selected columns are the table's catalog columns in scan order.
// Every statement ends with an id tiebreaker so results are deterministic.
// All values are bound as parameters, never interpolated.
func Compile(q criteria.Query) (string, []any, error) {
	if err := criteria.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	cols := q.Table.Columns()
	for i, c := range cols {
		cols[i] = alias + "." + c
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(cols, ", "), from(q))

	where, params, err := compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy(q.Order))

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return sb.String(), params, nil
}

// CompileCount converts a query to a COUNT(*) statement.
// Order and Limit are ignored.
func CompileCount(q criteria.Query) (string, []any, error) {
	if err := criteria.Validate(criteria.Query{Table: q.Table, Filter: q.Filter}); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}
	where, params, err := compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + from(q) + where, params, nil
}

// from renders the FROM clause, joining the full-text index when needed.
func from(q criteria.Query) string {
	f := string(q.Table) + " AS " + alias
	if hasMatch(q.Filter) {
		f += fmt.Sprintf(" JOIN %s ON %s.rowid = %s.id", criteria.FTSTable, criteria.FTSTable, alias)
	}
	return f
}

func compileWhere(p criteria.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// orderBy renders the ORDER BY list. An id ASC tiebreaker is appended
// unless the caller already ordered by id.
func orderBy(order []criteria.Order) string {
	parts := make([]string, 0, len(order)+1)
	sawID := false
	for _, o := range order {
		var key string
		if o.Field == criteria.Rank {
			key = criteria.FTSTable + ".rank"
		} else {
			key = alias + "." + o.Field
		}
		if o.Desc {
			key += " DESC"
		} else {
			key += " ASC"
		}
		if o.NullsFirst {
			key += " NULLS FIRST"
		}
		if o.Field == "id" {
			sawID = true
		}
		parts = append(parts, key)
	}
	if !sawID {
		parts = append(parts, alias+".id ASC")
	}
	return strings.Join(parts, ", ")
}

// compilePredicate compiles a predicate to a WHERE fragment.
func compilePredicate(p criteria.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case criteria.Equals:
		v, err := toParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", pred.Field, err)
		}
		return col(pred.Field) + " = ?", []any{v}, nil
	case criteria.Since:
		return col(pred.Field) + " >= ?", []any{criteria.FormatTime(pred.Time)}, nil
	case criteria.Before:
		return col(pred.Field) + " < ?", []any{criteria.FormatTime(pred.Time)}, nil
	case criteria.IsNull:
		return col(pred.Field) + " IS NULL", nil, nil
	case criteria.And:
		return compileJunction(pred.Predicates, " AND ", "1 = 1")
	case criteria.Or:
		return compileJunction(pred.Predicates, " OR ", "1 = 0")
	case criteria.HasTag:
		return col("tags") + ` LIKE ? ESCAPE '\'`, []any{criteria.TagPattern(pred.Tag)}, nil
	case criteria.Contains:
		pattern := "%" + criteria.EscapeLike(pred.Text) + "%"
		parts := make([]string, len(pred.Fields))
		params := make([]any, len(pred.Fields))
		for i, f := range pred.Fields {
			parts[i] = col(f) + ` LIKE ? ESCAPE '\'`
			params[i] = pattern
		}
		return "(" + strings.Join(parts, " OR ") + ")", params, nil
	case criteria.Match:
		return criteria.FTSTable + " MATCH ?", []any{pred.Text}, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileJunction(preds []criteria.Predicate, op, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(preds))
	var params []any
	for _, sub := range preds {
		sql, subParams, err := compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}
	return "(" + strings.Join(parts, op) + ")", params, nil
}

func col(field string) string {
	return alias + "." + field
}

// hasMatch reports whether the filter carries a Match at a position
// Validate accepts.
func hasMatch(p criteria.Predicate) bool {
	switch pred := p.(type) {
	case criteria.Match:
		return true
	case criteria.And:
		for _, sub := range pred.Predicates {
			if hasMatch(sub) {
				return true
			}
		}
	}
	return false
}

// toParam converts an Equals value to a driver parameter.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case time.Time:
		return criteria.FormatTime(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}
