package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finch/internal/queryir"
)

func TestCompilePredicate_Compare(t *testing.T) {
	sql, params, err := CompilePredicate(queryir.Compare{Column: "age", Op: queryir.CompareGt, Value: 30})
	require.NoError(t, err)

	assert.Equal(t, "age > ?", sql)
	assert.Equal(t, []any{30}, params)
}

func TestCompilePredicate_In(t *testing.T) {
	sql, params, err := CompilePredicate(queryir.In{Column: "status", Values: []any{"a", "b", "c"}})
	require.NoError(t, err)

	assert.Equal(t, "status IN (?, ?, ?)", sql)
	assert.Equal(t, []any{"a", "b", "c"}, params)
}

func TestCompilePredicate_NotIn(t *testing.T) {
	sql, params, err := CompilePredicate(queryir.In{Column: "status", Values: []any{"a"}, Negate: true})
	require.NoError(t, err)

	assert.Equal(t, "status NOT IN (?)", sql)
	assert.Equal(t, []any{"a"}, params)
}

func TestCompilePredicate_Null(t *testing.T) {
	sql, params, err := CompilePredicate(queryir.Null{Column: "status"})
	require.NoError(t, err)
	assert.Equal(t, "status IS NULL", sql)
	assert.Empty(t, params)

	sql, params, err = CompilePredicate(queryir.Null{Column: "status", Negate: true})
	require.NoError(t, err)
	assert.Equal(t, "status IS NOT NULL", sql)
	assert.Empty(t, params)
}

func TestCompilePredicate_Like(t *testing.T) {
	sql, params, err := CompilePredicate(queryir.Like{Column: "name", Pattern: "ali%"})
	require.NoError(t, err)

	assert.Equal(t, "name LIKE ?", sql)
	assert.Equal(t, []any{"ali%"}, params)

	// Pattern is parameterized, never interpolated.
	assert.NotContains(t, sql, "ali%")
}

func TestCompilePredicate_Boolean(t *testing.T) {
	p := queryir.Or{
		Left: queryir.And{
			Left:  queryir.Compare{Column: "age", Op: queryir.CompareGe, Value: 18},
			Right: queryir.Compare{Column: "age", Op: queryir.CompareLt, Value: 65},
		},
		Right: queryir.Compare{Column: "status", Op: queryir.CompareEq, Value: "retired"},
	}

	sql, params, err := CompilePredicate(p)
	require.NoError(t, err)

	assert.Equal(t, "((age >= ? AND age < ?) OR status = ?)", sql)
	assert.Equal(t, []any{18, 65, "retired"}, params)
}

func TestCompilePredicate_PointerNodes(t *testing.T) {
	p := &queryir.And{
		Left:  &queryir.Compare{Column: "a", Op: queryir.CompareEq, Value: 1},
		Right: &queryir.Null{Column: "b"},
	}

	sql, params, err := CompilePredicate(p)
	require.NoError(t, err)

	assert.Equal(t, "(a = ? AND b IS NULL)", sql)
	assert.Equal(t, []any{1}, params)
}

func TestCompilePredicate_Nil(t *testing.T) {
	sql, params, err := CompilePredicate(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, params)
}

func TestCompilePredicate_EmptyInRejected(t *testing.T) {
	_, _, err := CompilePredicate(queryir.In{Column: "status"})
	require.Error(t, err)
}

func TestCompileSelect_NoFilter(t *testing.T) {
	sql, params, err := CompileSelect("users", []string{"id", "name"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM users", sql)
	assert.Empty(t, params)
}

func TestCompileSelect_Golden(t *testing.T) {
	g := goldie.New(t)

	tests := []struct {
		name    string
		columns []string
		filter  queryir.Predicate
	}{
		{
			name:    "select_and",
			columns: []string{"id", "name", "age"},
			filter: queryir.And{
				Left:  queryir.Compare{Column: "age", Op: queryir.CompareEq, Value: 30},
				Right: queryir.Compare{Column: "name", Op: queryir.CompareEq, Value: "alice"},
			},
		},
		{
			name:    "select_mixed_connectors",
			columns: []string{"id", "name", "age", "status"},
			filter: queryir.Or{
				Left: queryir.And{
					Left:  queryir.In{Column: "status", Values: []any{"active", "pending"}},
					Right: queryir.Compare{Column: "age", Op: queryir.CompareGt, Value: 30},
				},
				Right: queryir.Compare{Column: "name", Op: queryir.CompareEq, Value: "alice"},
			},
		},
		{
			name:    "select_empty_in_degenerate",
			columns: []string{"id", "status"},
			filter:  queryir.Null{Column: "status"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := CompileSelect("users", tc.columns, tc.filter)
			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(sql))
		})
	}
}

func TestCompileInsert(t *testing.T) {
	sql, err := CompileInsert("users", []string{"name", "age"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (name, age) VALUES (?, ?)", sql)
}

func TestCompileUpdateByKey(t *testing.T) {
	sql, err := CompileUpdateByKey("users", []string{"name", "age"}, "id")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name = ?, age = ? WHERE id = ?", sql)
}

func TestCompileDeleteByKey(t *testing.T) {
	sql, err := CompileDeleteByKey("users", "id")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", sql)
}

func TestCompileDeleteByKeyIn(t *testing.T) {
	sql, err := CompileDeleteByKeyIn("users", "id", 3)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id IN (?, ?, ?)", sql)

	_, err = CompileDeleteByKeyIn("users", "id", 0)
	require.Error(t, err)
}
