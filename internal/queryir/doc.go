// Package queryir defines the filter-expression tree built from a parsed
// method-name descriptor and its bound values.
//
// The tree is an intermediate representation between the method-name
// grammar and executable SQL: atomic predicates (comparison, membership,
// pattern match, null test) combined by boolean And/Or nodes. The
// querysql package compiles it to a parameterized WHERE clause.
package queryir
