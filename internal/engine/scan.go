package engine

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/finchdb/finch/internal/schema"
)

// scanStructs reads every row into a fresh T, matching result columns to
// struct fields through the descriptor's column mapping. Columns the
// descriptor does not know are discarded rather than failing, so raw
// projections wider than the entity still scan.
func scanStructs[T any](rows *sql.Rows, ent *schema.EntityDescriptor) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	// Struct field index per result column, -1 for discarded columns.
	indexes := make([]int, len(columns))
	for i, col := range columns {
		indexes[i] = -1
		if f, ok := ent.FieldByColumn(col); ok {
			indexes[i] = f.Index
		}
	}

	out := []T{}
	for rows.Next() {
		var entity T
		rv := reflect.ValueOf(&entity).Elem()
		dests := make([]any, len(columns))
		for i, idx := range indexes {
			if idx < 0 {
				dests[i] = new(any)
				continue
			}
			dests[i] = rv.Field(idx).Addr().Interface()
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", ent.Name, err)
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", ent.Name, err)
	}
	return out, nil
}

// scanMaps reads every row into a column-keyed map. []byte values are
// converted to string so callers get printable results.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
