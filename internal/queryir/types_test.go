package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumns_Atomic(t *testing.T) {
	assert.Equal(t, []string{"age"}, Columns(Compare{Column: "age", Op: CompareGt, Value: 30}))
	assert.Equal(t, []string{"status"}, Columns(In{Column: "status", Values: []any{"a"}}))
	assert.Equal(t, []string{"name"}, Columns(Like{Column: "name", Pattern: "a%"}))
	assert.Equal(t, []string{"status"}, Columns(Null{Column: "status"}))
}

func TestColumns_Nested(t *testing.T) {
	p := Or{
		Left: And{
			Left:  Compare{Column: "name", Op: CompareEq, Value: "x"},
			Right: Compare{Column: "age", Op: CompareGe, Value: 18},
		},
		Right: In{Column: "status", Values: []any{"active"}},
	}

	assert.Equal(t, []string{"name", "age", "status"}, Columns(p))
}

func TestColumns_Pointers(t *testing.T) {
	p := &And{
		Left:  &Compare{Column: "a", Op: CompareEq, Value: 1},
		Right: &Null{Column: "b", Negate: true},
	}

	assert.Equal(t, []string{"a", "b"}, Columns(p))
}

func TestColumns_Nil(t *testing.T) {
	assert.Nil(t, Columns(nil))
}
