package method

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Op identifies the comparison operation derived from a field's suffix.
type Op string

const (
	OpEquals       Op = "eq"
	OpIn           Op = "in"
	OpNotIn        Op = "not_in"
	OpGreaterThan  Op = "gt"
	OpGreaterEqual Op = "gte"
	OpLessThan     Op = "lt"
	OpLessEqual    Op = "lte"
	OpLike         Op = "like"
	OpNotEquals    Op = "ne"
)

// Connector is a boolean combinator token from the method name.
type Connector string

const (
	ConnectorAnd Connector = "_and_"
	ConnectorOr  Connector = "_or_"
)

// Descriptor is the parsed, immutable representation of a derived query
// method name.
//
// RequiredFields preserves token order and retains repeated field names;
// FieldOperations records the non-equality operation for a field (absent
// means implicit equality). Connectors apply left-to-right over a
// reduction stack, NOT with conventional AND/OR precedence.
type Descriptor struct {
	// RawTokens is the condition string split on connector markers, with
	// the markers retained. Kept for diagnostics.
	RawTokens []string

	// IsSingleResult is true for get_by / find_by prefixes.
	IsSingleResult bool

	// RequiredFields lists field names in token order.
	RequiredFields []string

	// FieldOperations maps field name to its operation. Fields with
	// implicit equality are absent.
	FieldOperations map[string]Op

	// Connectors lists the _and_ / _or_ tokens in order of appearance.
	Connectors []Connector
}

// Operation returns the operation for a field, defaulting to equality.
func (d Descriptor) Operation(field string) Op {
	if op, ok := d.FieldOperations[field]; ok {
		return op
	}
	return OpEquals
}

// prefixes in match order. The longer all-variants never collide with
// the short ones (find_all_by vs find_by diverge at the fourth rune).
var prefixes = []struct {
	prefix string
	single bool
}{
	{"get_by_", true},
	{"find_by_", true},
	{"find_all_by_", false},
	{"get_all_by_", false},
}

// operation suffixes checked longest-first so _not_in wins over _in and
// _gte wins over any shorter overlap.
var opSuffixes = []struct {
	suffix string
	op     Op
}{
	{"_not_in", OpNotIn},
	{"_like", OpLike},
	{"_gte", OpGreaterEqual},
	{"_lte", OpLessEqual},
	{"_in", OpIn},
	{"_gt", OpGreaterThan},
	{"_lt", OpLessThan},
	{"_ne", OpNotEquals},
}

// Parse converts a repository method name into a Descriptor.
//
// The name must start with one of the four recognized prefixes and the
// remainder must be a well-formed condition string. Anything else fails
// with a ParseError (code INVALID_METHOD_NAME).
func Parse(name string) (Descriptor, error) {
	name = norm.NFC.String(name)

	var (
		condition string
		single    bool
		matched   bool
	)
	for _, p := range prefixes {
		if strings.HasPrefix(name, p.prefix) {
			condition = strings.TrimPrefix(name, p.prefix)
			single = p.single
			matched = true
			break
		}
	}
	if !matched {
		return Descriptor{}, &ParseError{
			Code:    ErrCodeInvalidMethodName,
			Name:    name,
			Message: "method name must start with get_by, find_by, find_all_by, or get_all_by",
		}
	}
	if condition == "" {
		return Descriptor{}, &ParseError{
			Code:    ErrCodeInvalidMethodName,
			Name:    name,
			Message: "empty condition string after prefix",
		}
	}

	tokens := splitConditions(condition)

	desc := Descriptor{
		RawTokens:       tokens,
		IsSingleResult:  single,
		FieldOperations: map[string]Op{},
	}
	for _, token := range tokens {
		if token == string(ConnectorAnd) || token == string(ConnectorOr) {
			desc.Connectors = append(desc.Connectors, Connector(token))
			continue
		}
		if token == "" {
			return Descriptor{}, &ParseError{
				Code:    ErrCodeInvalidMethodName,
				Name:    name,
				Message: "dangling connector in condition string",
			}
		}
		field, op := detectOperation(token)
		if field == "" {
			return Descriptor{}, &ParseError{
				Code:    ErrCodeInvalidMethodName,
				Name:    name,
				Message: "operation suffix without a field name: " + token,
			}
		}
		desc.RequiredFields = append(desc.RequiredFields, field)
		if op != OpEquals {
			desc.FieldOperations[field] = op
		}
	}

	// By construction the split alternates field and connector tokens,
	// so connectors = fields - 1 always holds here.
	if len(desc.RequiredFields) == 0 {
		return Descriptor{}, &ParseError{
			Code:    ErrCodeInvalidMethodName,
			Name:    name,
			Message: "no fields in condition string",
		}
	}

	return desc, nil
}

// splitConditions splits the condition string on _and_ / _or_ markers,
// retaining the markers as standalone tokens. The leftmost marker wins
// when both could match.
func splitConditions(condition string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(condition); {
		var marker string
		switch {
		case strings.HasPrefix(condition[i:], string(ConnectorAnd)):
			marker = string(ConnectorAnd)
		case strings.HasPrefix(condition[i:], string(ConnectorOr)):
			marker = string(ConnectorOr)
		default:
			i++
			continue
		}
		tokens = append(tokens, condition[start:i], marker)
		i += len(marker)
		start = i
	}
	tokens = append(tokens, condition[start:])
	return tokens
}

// detectOperation strips a trailing operation suffix from a token.
// Returns the base field name and the operation; tokens without a
// recognized suffix are implicit equality.
//
// The grammar cannot distinguish a field literally named with an
// operation-like ending (e.g. a column called "bonus_in") from an IN
// operation on "bonus". Schema validation rejects such column names
// instead of guessing here.
func detectOperation(token string) (string, Op) {
	for _, s := range opSuffixes {
		if strings.HasSuffix(token, s.suffix) {
			return strings.TrimSuffix(token, s.suffix), s.op
		}
	}
	return token, OpEquals
}
