package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/queryir"
)

var testColumns = map[string]string{
	"name":   "name",
	"age":    "age",
	"status": "status",
}

func mustParse(t *testing.T, name string) method.Descriptor {
	t.Helper()
	desc, err := method.Parse(name)
	require.NoError(t, err)
	return desc
}

func TestBuildFilter_SingleEquality(t *testing.T) {
	desc := mustParse(t, "find_by_name")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"name": "alice"})
	require.NoError(t, err)

	assert.Equal(t, queryir.Compare{Column: "name", Op: queryir.CompareEq, Value: "alice"}, filter)
}

// The connector combines the two oldest pending predicates with the
// SECOND as the left side, matching the reduction the grammar defines.
func TestBuildFilter_AndReductionOrder(t *testing.T) {
	desc := mustParse(t, "find_by_name_and_age")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"name": "alice", "age": 30})
	require.NoError(t, err)

	assert.Equal(t, queryir.And{
		Left:  queryir.Compare{Column: "age", Op: queryir.CompareEq, Value: 30},
		Right: queryir.Compare{Column: "name", Op: queryir.CompareEq, Value: "alice"},
	}, filter)
}

// Left-to-right stack reduction, not AND-before-OR precedence: the OR
// consumes the third atom and the already-combined AND node.
func TestBuildFilter_NoOperatorPrecedence(t *testing.T) {
	desc := mustParse(t, "find_all_by_age_gt_and_status_in_or_name")

	filter, err := BuildFilter(desc, testColumns, map[string]any{
		"age":    30,
		"status": []string{"active", "pending"},
		"name":   "alice",
	})
	require.NoError(t, err)

	or, ok := filter.(queryir.Or)
	require.True(t, ok, "top node should be Or, got %T", filter)
	_, ok = or.Left.(queryir.And)
	assert.True(t, ok, "left of Or should be the combined And, got %T", or.Left)
	assert.Equal(t, queryir.Compare{Column: "name", Op: queryir.CompareEq, Value: "alice"}, or.Right)
}

func TestBuildFilter_EmptyInDegeneratesToNull(t *testing.T) {
	desc := mustParse(t, "find_all_by_status_in")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"status": []string{}})
	require.NoError(t, err)

	assert.Equal(t, queryir.Null{Column: "status"}, filter)
}

func TestBuildFilter_EmptyNotInDegeneratesToNotNull(t *testing.T) {
	desc := mustParse(t, "find_all_by_status_not_in")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"status": []string{}})
	require.NoError(t, err)

	assert.Equal(t, queryir.Null{Column: "status", Negate: true}, filter)
}

func TestBuildFilter_InRequiresCollection(t *testing.T) {
	desc := mustParse(t, "find_all_by_status_in")

	_, err := BuildFilter(desc, testColumns, map[string]any{"status": "active"})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBuildFilter_MissingBoundValue(t *testing.T) {
	desc := mustParse(t, "find_by_name_and_age")

	_, err := BuildFilter(desc, testColumns, map[string]any{"name": "alice"})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBuildFilter_ExtraBoundValue(t *testing.T) {
	desc := mustParse(t, "find_by_name")

	_, err := BuildFilter(desc, testColumns, map[string]any{"name": "alice", "age": 30})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBuildFilter_UnknownField(t *testing.T) {
	desc := mustParse(t, "find_by_email")

	_, err := BuildFilter(desc, testColumns, map[string]any{"email": "a@b"})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBuildFilter_ComparisonOperations(t *testing.T) {
	tests := []struct {
		name string
		op   queryir.CompareOp
	}{
		{"find_by_age_gt", queryir.CompareGt},
		{"find_by_age_gte", queryir.CompareGe},
		{"find_by_age_lt", queryir.CompareLt},
		{"find_by_age_lte", queryir.CompareLe},
		{"find_by_age_ne", queryir.CompareNe},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			desc := mustParse(t, tc.name)
			filter, err := BuildFilter(desc, testColumns, map[string]any{"age": 30})
			require.NoError(t, err)
			assert.Equal(t, queryir.Compare{Column: "age", Op: tc.op, Value: 30}, filter)
		})
	}
}

func TestBuildFilter_Like(t *testing.T) {
	desc := mustParse(t, "find_all_by_name_like")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"name": "ali%"})
	require.NoError(t, err)

	assert.Equal(t, queryir.Like{Column: "name", Pattern: "ali%"}, filter)
}

func TestBuildFilter_ArrayCollection(t *testing.T) {
	desc := mustParse(t, "find_all_by_status_in")

	filter, err := BuildFilter(desc, testColumns, map[string]any{"status": [2]string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, queryir.In{Column: "status", Values: []any{"a", "b"}}, filter)
}
