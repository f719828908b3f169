package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Schema files declare entities as plain data:
//
//	entities: {
//		User: {
//			module: "src.models"
//			table:  "users"
//			fields: {
//				id:     {type: "int", primary: true}
//				name:   {type: "string"}
//				age:    {type: "int"}
//				status: {type: "string"}
//			}
//		}
//	}
type cueEntity struct {
	Module string              `json:"module"`
	Table  string              `json:"table"`
	Fields map[string]cueField `json:"fields"`
}

type cueField struct {
	Column  string `json:"column"`
	Type    string `json:"type"`
	Primary bool   `json:"primary"`
}

// LoadDir loads entity descriptors from the CUE files in a directory.
// This is the explicit discovery step: entities arrive as plain data,
// with no runtime type introspection. Returned descriptors are NOT yet
// deduplicated - run Resolve over them before building a registry.
func LoadDir(dir string) ([]EntityDescriptor, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("schema directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	entities := value.LookupPath(cue.ParsePath("entities"))
	if !entities.Exists() {
		return nil, fmt.Errorf("schema files in %s declare no entities", dir)
	}

	iter, err := entities.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	var descs []EntityDescriptor
	for iter.Next() {
		name := iter.Selector().Unquoted()
		entityValue := iter.Value()

		var decoded cueEntity
		if err := entityValue.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}

		desc, err := descriptorFromCUE(name, decoded)
		if err != nil {
			return nil, err
		}
		if pos := entityValue.Pos(); pos.IsValid() {
			desc.SourceFile = filepath.Base(pos.Filename())
		}
		descs = append(descs, desc)
	}

	sort.Slice(descs, func(i, j int) bool {
		return descs[i].QualifiedName() < descs[j].QualifiedName()
	})
	return descs, nil
}

func descriptorFromCUE(name string, decoded cueEntity) (EntityDescriptor, error) {
	desc := EntityDescriptor{
		Name:   name,
		Module: decoded.Module,
		Table:  decoded.Table,
	}
	if desc.Table == "" {
		desc.Table = SnakeCase(name)
	}

	// Map iteration order is not stable; sort for a deterministic
	// descriptor.
	fieldNames := make([]string, 0, len(decoded.Fields))
	for fieldName := range decoded.Fields {
		fieldNames = append(fieldNames, fieldName)
	}
	sort.Strings(fieldNames)

	for i, fieldName := range fieldNames {
		cf := decoded.Fields[fieldName]
		column := cf.Column
		if column == "" {
			column = fieldName
		}
		sqlType, err := sqlTypeFromDeclared(cf.Type)
		if err != nil {
			return EntityDescriptor{}, fmt.Errorf("entity %s, field %s: %w", name, fieldName, err)
		}
		desc.Fields = append(desc.Fields, Field{
			Name:      fieldName,
			Column:    column,
			IsPrimary: cf.Primary,
			Index:     i,
			SQLType:   sqlType,
		})
	}

	if err := desc.Validate(); err != nil {
		return EntityDescriptor{}, err
	}
	return desc, nil
}

// sqlTypeFromDeclared maps a declared schema-file type to a column
// affinity.
func sqlTypeFromDeclared(declared string) (string, error) {
	switch declared {
	case "int", "bool":
		return SQLInteger, nil
	case "float":
		return SQLReal, nil
	case "string", "uuid", "":
		return SQLText, nil
	case "bytes":
		return SQLBlob, nil
	case "time":
		return SQLTimestamp, nil
	default:
		return "", fmt.Errorf("unknown field type %q", declared)
	}
}
