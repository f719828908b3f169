// Package method parses repository method names into structured query
// descriptors.
//
// Method names follow a fixed convention: a result-cardinality prefix
// (get_by, find_by, find_all_by, get_all_by) followed by a condition
// string of field names joined by _and_ / _or_ connectors, where each
// field may carry a trailing operation suffix (_in, _gt, _gte, _lt,
// _lte, _like, _ne, _not_in).
//
// Parsing is deterministic and pure: the same name always yields the
// same Descriptor. Names that do not match the grammar fail with a
// ParseError carrying code INVALID_METHOD_NAME.
package method
