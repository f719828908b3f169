package queryir

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the SQL compiler.
//
// Predicate types:
//   - Compare: column <op> value (=, !=, >, >=, <, <=)
//   - In: column IN / NOT IN a value list
//   - Like: column LIKE pattern
//   - Null: column IS NULL / IS NOT NULL (degenerate-case predicate)
//   - And, Or: boolean combination of two predicates
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// CompareOp is the SQL comparison operator for a Compare predicate.
type CompareOp string

const (
	CompareEq CompareOp = "="
	CompareNe CompareOp = "!="
	CompareGt CompareOp = ">"
	CompareGe CompareOp = ">="
	CompareLt CompareOp = "<"
	CompareLe CompareOp = "<="
)

// Compare is an atomic comparison predicate: column <op> value.
type Compare struct {
	Column string
	Op     CompareOp
	Value  any
}

func (Compare) predicateNode() {}

// In is a membership predicate: column IN (values) or, when Negate is
// set, column NOT IN (values). Values must be non-empty; the empty
// collection degenerates to a Null predicate instead (see querysql).
type In struct {
	Column string
	Values []any
	Negate bool
}

func (In) predicateNode() {}

// Like is a pattern-match predicate: column LIKE pattern.
type Like struct {
	Column  string
	Pattern any
}

func (Like) predicateNode() {}

// Null is a null test: column IS NULL or, when Negate is set, column
// IS NOT NULL.
//
// Against a non-nullable column this is a deliberate degenerate
// predicate: always false (IS NULL) or always true (IS NOT NULL). It is
// how an empty IN / NOT IN collection is represented - NOT a data-level
// null check.
type Null struct {
	Column string
	Negate bool
}

func (Null) predicateNode() {}

// And combines two predicates; both must hold.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) predicateNode() {}

// Or combines two predicates; either may hold.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) predicateNode() {}

// Columns returns every column referenced by the predicate tree, in
// depth-first order with duplicates retained. Used for diagnostics.
func Columns(p Predicate) []string {
	switch pred := p.(type) {
	case nil:
		return nil
	case Compare:
		return []string{pred.Column}
	case *Compare:
		return []string{pred.Column}
	case In:
		return []string{pred.Column}
	case *In:
		return []string{pred.Column}
	case Like:
		return []string{pred.Column}
	case *Like:
		return []string{pred.Column}
	case Null:
		return []string{pred.Column}
	case *Null:
		return []string{pred.Column}
	case And:
		return append(Columns(pred.Left), Columns(pred.Right)...)
	case *And:
		return append(Columns(pred.Left), Columns(pred.Right)...)
	case Or:
		return append(Columns(pred.Left), Columns(pred.Right)...)
	case *Or:
		return append(Columns(pred.Left), Columns(pred.Right)...)
	default:
		return nil
	}
}
