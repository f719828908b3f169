package querysql

import (
	"fmt"
	"strings"
)

// CompileInsert builds an INSERT statement for the given columns.
func CompileInsert(table string, columns []string) (string, error) {
	if table == "" || len(columns) == 0 {
		return "", fmt.Errorf("cannot compile insert for %q with %d columns", table, len(columns))
	}
	placeholders := strings.Repeat("?, ", len(columns)-1) + "?"
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		placeholders), nil
}

// CompileUpdateByKey builds an UPDATE statement setting columns, keyed
// by keyColumn. The key parameter binds last.
func CompileUpdateByKey(table string, columns []string, keyColumn string) (string, error) {
	if table == "" || len(columns) == 0 || keyColumn == "" {
		return "", fmt.Errorf("cannot compile update for %q", table)
	}
	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = col + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		table,
		strings.Join(assignments, ", "),
		keyColumn), nil
}

// CompileDeleteByKey builds a DELETE statement keyed by keyColumn.
func CompileDeleteByKey(table, keyColumn string) (string, error) {
	if table == "" || keyColumn == "" {
		return "", fmt.Errorf("cannot compile delete for %q", table)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, keyColumn), nil
}

// CompileDeleteByKeyIn builds a DELETE statement for a key IN list of
// size n. n must be positive; the zero-key case is the caller's no-op.
func CompileDeleteByKeyIn(table, keyColumn string, n int) (string, error) {
	if table == "" || keyColumn == "" || n <= 0 {
		return "", fmt.Errorf("cannot compile delete-in for %q with %d keys", table, n)
	}
	placeholders := strings.Repeat("?, ", n-1) + "?"
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", table, keyColumn, placeholders), nil
}
