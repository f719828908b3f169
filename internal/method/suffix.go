package method

import "strings"

// OperationSuffixes returns the reserved operation suffixes in match
// order. Schema validation uses this to reject column names that the
// grammar would misread as an operation (the convention's inherent
// ambiguity: a column literally named "bonus_in" is indistinguishable
// from an IN operation on "bonus").
func OperationSuffixes() []string {
	out := make([]string, len(opSuffixes))
	for i, s := range opSuffixes {
		out[i] = s.suffix
	}
	return out
}

// CollidesWithOperationSuffix reports whether a field or column name
// ends in a reserved operation suffix.
func CollidesWithOperationSuffix(name string) (string, bool) {
	for _, s := range opSuffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.suffix, true
		}
	}
	return "", false
}
