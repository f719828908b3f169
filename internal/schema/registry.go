package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// Registry is the single authoritative holder of resolved entity
// descriptors. Read-only after construction.
type Registry struct {
	byName  map[string]*EntityDescriptor
	byTable map[string]*EntityDescriptor
	byType  map[reflect.Type]*EntityDescriptor
}

// NewRegistry builds a registry from resolved descriptors. Descriptors
// must already be deduplicated (see Resolve); a simple-name or table
// collision here is a programming error and fails construction.
func NewRegistry(descs []EntityDescriptor) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*EntityDescriptor, len(descs)),
		byTable: make(map[string]*EntityDescriptor, len(descs)),
		byType:  make(map[reflect.Type]*EntityDescriptor, len(descs)),
	}
	for i := range descs {
		desc := &descs[i]
		if err := desc.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byName[desc.Name]; exists {
			return nil, fmt.Errorf("registry: duplicate entity name %q (run duplicate resolution first)", desc.Name)
		}
		if _, exists := r.byTable[desc.Table]; exists {
			return nil, fmt.Errorf("registry: duplicate table %q", desc.Table)
		}
		r.byName[desc.Name] = desc
		r.byTable[desc.Table] = desc
		if desc.GoType != nil {
			r.byType[desc.GoType] = desc
		}
	}
	return r, nil
}

// ByName returns the descriptor for a simple entity name.
func (r *Registry) ByName(name string) (*EntityDescriptor, bool) {
	desc, ok := r.byName[name]
	return desc, ok
}

// ByTable returns the descriptor for a table identity.
func (r *Registry) ByTable(table string) (*EntityDescriptor, bool) {
	desc, ok := r.byTable[table]
	return desc, ok
}

// ByType returns the descriptor for a reflected entity type.
func (r *Registry) ByType(t reflect.Type) (*EntityDescriptor, bool) {
	desc, ok := r.byType[t]
	return desc, ok
}

// All returns every descriptor, sorted by simple name.
func (r *Registry) All() []*EntityDescriptor {
	out := make([]*EntityDescriptor, 0, len(r.byName))
	for _, desc := range r.byName {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
