// Package querysql compiles parsed method descriptors and predicate
// trees into parameterized SQL for SQLite.
//
// CRITICAL: all values are parameterized with ? placeholders, never
// interpolated into the SQL text.
package querysql

import (
	"fmt"
	"strings"

	"github.com/finchdb/finch/internal/queryir"
)

// CompileSelect assembles a full SELECT statement for a table with an
// explicit column list and an optional filter.
// Returns (sql, params, error).
func CompileSelect(table string, columns []string, filter queryir.Predicate) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("cannot compile select without a table")
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("cannot compile select without columns")
	}

	var whereClause string
	var params []any
	if filter != nil {
		filterSQL, filterParams, err := CompilePredicate(filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s",
		strings.Join(columns, ", "),
		table,
		whereClause)

	return sql, params, nil
}

// CompilePredicate compiles a predicate tree to a SQL WHERE fragment.
// Returns (sql, params, error).
// CRITICAL: values NEVER interpolated - always use ? placeholders.
func CompilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Compare:
		return compileCompare(pred)
	case *queryir.Compare:
		return compileCompare(*pred)
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.Like:
		return compileLike(pred)
	case *queryir.Like:
		return compileLike(*pred)
	case queryir.Null:
		return compileNull(pred)
	case *queryir.Null:
		return compileNull(*pred)
	case queryir.And:
		return compileBoolean("AND", pred.Left, pred.Right)
	case *queryir.And:
		return compileBoolean("AND", pred.Left, pred.Right)
	case queryir.Or:
		return compileBoolean("OR", pred.Left, pred.Right)
	case *queryir.Or:
		return compileBoolean("OR", pred.Left, pred.Right)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileCompare(p queryir.Compare) (string, []any, error) {
	if p.Column == "" {
		return "", nil, fmt.Errorf("compare predicate without a column")
	}
	switch p.Op {
	case queryir.CompareEq, queryir.CompareNe, queryir.CompareGt,
		queryir.CompareGe, queryir.CompareLt, queryir.CompareLe:
	default:
		return "", nil, fmt.Errorf("unsupported compare operator %q", p.Op)
	}
	return fmt.Sprintf("%s %s ?", p.Column, p.Op), []any{p.Value}, nil
}

func compileIn(p queryir.In) (string, []any, error) {
	if p.Column == "" {
		return "", nil, fmt.Errorf("in predicate without a column")
	}
	if len(p.Values) == 0 {
		// Empty collections degenerate to Null predicates upstream.
		return "", nil, fmt.Errorf("in predicate with empty value list")
	}
	placeholders := strings.Repeat("?, ", len(p.Values)-1) + "?"
	op := "IN"
	if p.Negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", p.Column, op, placeholders), p.Values, nil
}

func compileLike(p queryir.Like) (string, []any, error) {
	if p.Column == "" {
		return "", nil, fmt.Errorf("like predicate without a column")
	}
	return fmt.Sprintf("%s LIKE ?", p.Column), []any{p.Pattern}, nil
}

func compileNull(p queryir.Null) (string, []any, error) {
	if p.Column == "" {
		return "", nil, fmt.Errorf("null predicate without a column")
	}
	if p.Negate {
		return fmt.Sprintf("%s IS NOT NULL", p.Column), nil, nil
	}
	return fmt.Sprintf("%s IS NULL", p.Column), nil, nil
}

func compileBoolean(op string, left, right queryir.Predicate) (string, []any, error) {
	if left == nil || right == nil {
		return "", nil, fmt.Errorf("%s predicate with a nil side", op)
	}
	leftSQL, leftParams, err := CompilePredicate(left)
	if err != nil {
		return "", nil, err
	}
	rightSQL, rightParams, err := CompilePredicate(right)
	if err != nil {
		return "", nil, err
	}
	params := append(leftParams, rightParams...)
	return fmt.Sprintf("(%s %s %s)", leftSQL, op, rightSQL), params, nil
}
