// Package schema describes entity types as plain data.
//
// An EntityDescriptor carries everything the rest of the system needs to
// know about an entity: simple name, owning module, table identity,
// fields, and primary key. Descriptors come from two explicit
// registration paths - reflecting a tagged Go struct (Describe) or
// loading CUE schema files from a directory (LoadDir) - never from
// runtime type-hierarchy introspection.
//
// The duplicate-registration resolver (Resolve) deduplicates candidate
// descriptors by qualified identity and simple name before the registry
// is built; the Registry itself is read-only after construction.
package schema
