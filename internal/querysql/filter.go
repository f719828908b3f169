package querysql

import (
	"fmt"
	"reflect"

	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/queryir"
)

// BuildFilter converts a parsed descriptor plus bound values into a
// predicate tree.
//
// columns maps field names to their SQL column names. values must bind
// exactly the descriptor's required fields - no more, no fewer - and a
// value bound to an IN / NOT IN field must be a slice or array.
// Violations fail with an ArgumentError (code INVALID_ARGUMENT).
//
// Boolean connectors reduce strictly left-to-right over a pending stack
// in token order: each connector consumes the two oldest pending
// predicates and appends the combination. This is NOT conventional
// AND-before-OR precedence and must not be "fixed" to it.
func BuildFilter(desc method.Descriptor, columns map[string]string, values map[string]any) (queryir.Predicate, error) {
	if err := validateBoundValues(desc, values); err != nil {
		return nil, err
	}

	pending := make([]queryir.Predicate, 0, len(desc.RequiredFields))
	for _, field := range desc.RequiredFields {
		column, ok := columns[field]
		if !ok {
			return nil, &ArgumentError{
				Code:    ErrCodeInvalidArgument,
				Field:   field,
				Message: "no such field on entity",
			}
		}
		atom, err := buildAtom(field, column, desc.Operation(field), values[field])
		if err != nil {
			return nil, err
		}
		pending = append(pending, atom)
	}

	for _, connector := range desc.Connectors {
		if len(pending) < 2 {
			return nil, &ArgumentError{
				Code:    ErrCodeInvalidArgument,
				Message: fmt.Sprintf("connector %q has fewer than two pending predicates", connector),
			}
		}
		right := pending[0]
		left := pending[1]
		pending = pending[2:]
		switch connector {
		case method.ConnectorAnd:
			pending = append(pending, queryir.And{Left: left, Right: right})
		case method.ConnectorOr:
			pending = append(pending, queryir.Or{Left: left, Right: right})
		default:
			return nil, &ArgumentError{
				Code:    ErrCodeInvalidArgument,
				Message: fmt.Sprintf("unknown connector %q", connector),
			}
		}
	}

	if len(pending) == 0 {
		return nil, nil // no WHERE clause
	}
	return pending[len(pending)-1], nil
}

// validateBoundValues checks the bound-value key set equals the
// descriptor's required-field set exactly.
func validateBoundValues(desc method.Descriptor, values map[string]any) error {
	required := make(map[string]bool, len(desc.RequiredFields))
	for _, field := range desc.RequiredFields {
		required[field] = true
	}
	for _, field := range desc.RequiredFields {
		if _, ok := values[field]; !ok {
			return &ArgumentError{
				Code:    ErrCodeInvalidArgument,
				Field:   field,
				Message: "missing bound value",
			}
		}
	}
	for key := range values {
		if !required[key] {
			return &ArgumentError{
				Code:    ErrCodeInvalidArgument,
				Field:   key,
				Message: "bound value does not match any required field",
			}
		}
	}
	return nil
}

// buildAtom builds one atomic predicate for a field.
//
// Empty IN degenerates to column IS NULL (always false on a non-nullable
// column); empty NOT IN degenerates to column IS NOT NULL (always true).
func buildAtom(field, column string, op method.Op, value any) (queryir.Predicate, error) {
	switch op {
	case method.OpEquals:
		return queryir.Compare{Column: column, Op: queryir.CompareEq, Value: value}, nil
	case method.OpNotEquals:
		return queryir.Compare{Column: column, Op: queryir.CompareNe, Value: value}, nil
	case method.OpGreaterThan:
		return queryir.Compare{Column: column, Op: queryir.CompareGt, Value: value}, nil
	case method.OpGreaterEqual:
		return queryir.Compare{Column: column, Op: queryir.CompareGe, Value: value}, nil
	case method.OpLessThan:
		return queryir.Compare{Column: column, Op: queryir.CompareLt, Value: value}, nil
	case method.OpLessEqual:
		return queryir.Compare{Column: column, Op: queryir.CompareLe, Value: value}, nil
	case method.OpLike:
		return queryir.Like{Column: column, Pattern: value}, nil
	case method.OpIn, method.OpNotIn:
		elems, err := collectionElements(field, value)
		if err != nil {
			return nil, err
		}
		negate := op == method.OpNotIn
		if len(elems) == 0 {
			return queryir.Null{Column: column, Negate: negate}, nil
		}
		return queryir.In{Column: column, Values: elems, Negate: negate}, nil
	default:
		return nil, &ArgumentError{
			Code:    ErrCodeInvalidArgument,
			Field:   field,
			Message: fmt.Sprintf("unsupported operation %q", op),
		}
	}
}

// collectionElements flattens a slice or array value into []any.
func collectionElements(field string, value any) ([]any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, &ArgumentError{
			Code:    ErrCodeInvalidArgument,
			Field:   field,
			Message: fmt.Sprintf("IN/NOT IN requires a slice or array, got %T", value),
		}
	}
	elems := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, nil
}
