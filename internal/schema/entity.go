package schema

import (
	"fmt"
	"reflect"

	"github.com/finchdb/finch/internal/method"
)

// SQL column affinities used when tables are created eagerly.
const (
	SQLInteger   = "INTEGER"
	SQLReal      = "REAL"
	SQLText      = "TEXT"
	SQLBlob      = "BLOB"
	SQLTimestamp = "TIMESTAMP"
)

// Field describes one persistent field of an entity.
type Field struct {
	// Name is the logical field name used in derived method names.
	Name string

	// Column is the SQL column name. Equal to Name unless overridden.
	Column string

	// IsPrimary marks the primary-key field.
	IsPrimary bool

	// Index is the Go struct field index for reflected entities, or the
	// positional index for descriptors loaded as plain data.
	Index int

	// Type is the Go field type. Nil for descriptors loaded from schema
	// files.
	Type reflect.Type

	// SQLType is the column affinity used for eager table creation.
	SQLType string

	// Nullable marks pointer-typed fields.
	Nullable bool
}

// EntityDescriptor is the plain-data description of one entity type.
type EntityDescriptor struct {
	// Name is the simple entity name (e.g. "User").
	Name string

	// Module is the logical module the entity belongs to: the Go
	// package path for reflected entities, or the declared module for
	// schema-file entities. Used by duplicate resolution.
	Module string

	// SourceFile is the base name of the file the entity was declared
	// in, when known. Empty is tolerated (accepted with a warning).
	SourceFile string

	// Table is the persistent-table identity. Required.
	Table string

	// Fields in declaration order.
	Fields []Field

	// GoType is the reflected struct type, nil for plain-data
	// descriptors.
	GoType reflect.Type
}

// QualifiedName is the duplicate-detection identity: module + name.
func (d *EntityDescriptor) QualifiedName() string {
	if d.Module == "" {
		return d.Name
	}
	return d.Module + "." + d.Name
}

// Columns returns the column names in field order.
func (d *EntityDescriptor) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Column
	}
	return cols
}

// ColumnsByField maps logical field names to column names.
func (d *EntityDescriptor) ColumnsByField() map[string]string {
	m := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		m[f.Name] = f.Column
	}
	return m
}

// FieldByName looks a field up by its logical name.
func (d *EntityDescriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByColumn looks a field up by its column name.
func (d *EntityDescriptor) FieldByColumn(column string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}

// PrimaryKey returns the primary-key field.
func (d *EntityDescriptor) PrimaryKey() (Field, error) {
	for _, f := range d.Fields {
		if f.IsPrimary {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("entity %s has no primary-key field", d.Name)
}

// Validate checks descriptor well-formedness.
//
// Column names ending in a reserved operation suffix are rejected: the
// method-name grammar cannot distinguish such a column from an operation
// on a shorter name, so the convention disallows them outright instead
// of guessing.
func (d *EntityDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("entity descriptor without a name")
	}
	if d.Table == "" {
		return fmt.Errorf("entity %s has no table identity", d.Name)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("entity %s has no fields", d.Name)
	}
	seen := make(map[string]bool, len(d.Fields))
	primaries := 0
	for _, f := range d.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("entity %s has a field without a name", d.Name)
		}
		if seen[f.Column] {
			return fmt.Errorf("entity %s declares column %q twice", d.Name, f.Column)
		}
		seen[f.Column] = true
		if suffix, collides := method.CollidesWithOperationSuffix(f.Name); collides {
			return fmt.Errorf(
				"entity %s: field %q ends in reserved operation suffix %q; rename the column, the naming grammar cannot distinguish it from an operation",
				d.Name, f.Name, suffix)
		}
		if f.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("entity %s declares %d primary-key fields, at most one is supported", d.Name, primaries)
	}
	return nil
}
