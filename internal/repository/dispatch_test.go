package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finch/internal/binder"
	"github.com/finchdb/finch/internal/querysql"
)

func boundUsers(t *testing.T) *Bound[int64, user] {
	t.Helper()
	users, _ := setupRepos(t)
	ctx := context.Background()

	require.NoError(t, users.SaveAll(ctx, []*user{
		{Name: "alice", Age: 25, Status: "active"},
		{Name: "bob", Age: 35, Status: "active"},
		{Name: "carol", Age: 45, Status: "disabled"},
	}))

	bound, err := Bind(users, []binder.MethodSpec{
		{Name: "get_by_name", Params: []string{"name"}},
		{Name: "find_all_by_age_gt", Params: []string{"age"}},
		{Name: "find_all_by_status_in", Params: []string{"statuses"}},
		{Name: "find_all_by_status_not_in", Params: []string{"statuses"}},
	}, []binder.RawSpec{
		{Name: "find_veterans", SQL: "SELECT id, name, age, status FROM user WHERE age >= :age ORDER BY age"},
		{Name: "retire_veterans", SQL: "UPDATE user SET status = 'retired' WHERE age >= :age", Modifying: true},
	})
	require.NoError(t, err)
	return bound
}

func TestCall_GreaterThan(t *testing.T) {
	bound := boundUsers(t)

	// Ages 25, 35, 45 with a threshold of 25: strictly greater only.
	results, err := bound.Call(context.Background(), "find_all_by_age_gt",
		map[string]any{"age": int64(25)})
	require.NoError(t, err)

	ages := make([]int64, len(results))
	for i, u := range results {
		ages[i] = u.Age
	}
	assert.ElementsMatch(t, []int64{35, 45}, ages)
}

func TestCall_EmptyCollections(t *testing.T) {
	bound := boundUsers(t)
	ctx := context.Background()

	none, err := bound.Call(ctx, "find_all_by_status_in",
		map[string]any{"statuses": []string{}})
	require.NoError(t, err)
	assert.Empty(t, none, "empty IN matches nothing")

	all, err := bound.Call(ctx, "find_all_by_status_not_in",
		map[string]any{"statuses": []string{}})
	require.NoError(t, err)
	assert.Len(t, all, 3, "empty NOT IN matches everything")
}

func TestCallOne(t *testing.T) {
	bound := boundUsers(t)
	ctx := context.Background()

	found, err := bound.CallOne(ctx, "get_by_name", map[string]any{"name": "bob"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(35), found.Age)

	missing, err := bound.CallOne(ctx, "get_by_name", map[string]any{"name": "nobody"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCall_ArityMismatchErrors(t *testing.T) {
	bound := boundUsers(t)
	ctx := context.Background()

	_, err := bound.Call(ctx, "get_by_name", map[string]any{"name": "bob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CallOne")

	_, err = bound.CallOne(ctx, "find_all_by_age_gt", map[string]any{"age": int64(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Call")

	_, err = bound.Call(ctx, "no_such_method", nil)
	require.Error(t, err)
}

func TestCall_InvalidArgumentShape(t *testing.T) {
	bound := boundUsers(t)

	// Scalar bound to an IN operation fails per call, not at bind time.
	_, err := bound.Call(context.Background(), "find_all_by_status_in",
		map[string]any{"statuses": "active"})
	require.Error(t, err)
	assert.True(t, querysql.IsInvalidArgument(err))
}

func TestCall_RawMethods(t *testing.T) {
	bound := boundUsers(t)
	ctx := context.Background()

	veterans, err := bound.Call(ctx, "find_veterans", map[string]any{"age": int64(35)})
	require.NoError(t, err)
	require.Len(t, veterans, 2)
	assert.Equal(t, "bob", veterans[0].Name)

	affected, err := bound.Exec(ctx, "retire_veterans", map[string]any{"age": int64(35)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	_, err = bound.Exec(ctx, "find_veterans", map[string]any{"age": int64(35)})
	require.Error(t, err)

	_, err = bound.Call(ctx, "retire_veterans", map[string]any{"age": int64(35)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Exec")
}

func TestBoundMethods(t *testing.T) {
	bound := boundUsers(t)

	assert.Equal(t, []string{
		"find_all_by_age_gt",
		"find_all_by_status_in",
		"find_all_by_status_not_in",
		"find_veterans",
		"get_by_name",
		"retire_veterans",
	}, bound.Methods())
}
