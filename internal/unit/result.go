package unit

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is the tabular outcome of a scripted unit's run callable.
// Either Query is set (the relation is that query's result) or Columns
// and Rows carry literal row data.
type Result struct {
	Query   string
	Columns []string
	Rows    [][]any
}

// RelationSQL renders the result as a queryable relation suitable for
// `SELECT * FROM <relation>`.
func (r *Result) RelationSQL() (string, error) {
	if r.Query != "" {
		return "(" + r.Query + ") AS _rel", nil
	}
	if len(r.Columns) == 0 || len(r.Rows) == 0 {
		return "", fmt.Errorf("scripted result has no query and no rows")
	}

	var sb strings.Builder
	sb.WriteString("(VALUES ")
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return "", fmt.Errorf("row %d has %d values, want %d", i, len(row), len(r.Columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			lit, err := sqlLiteral(v)
			if err != nil {
				return "", fmt.Errorf("row %d column %q: %w", i, r.Columns[j], err)
			}
			sb.WriteString(lit)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(") AS _rel(")
	for i, col := range r.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdent(col))
	}
	sb.WriteByte(')')
	return sb.String(), nil
}

// sqlLiteral renders a Go value as a SQL literal.
func sqlLiteral(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", v)
	}
}

// quoteIdent double-quotes an identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
