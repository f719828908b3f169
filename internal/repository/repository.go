// Package repository provides the generic per-entity CRUD contract plus
// dispatch for bound derived-query methods. Every operation runs inside
// a transactional scope, so calls nested under an outer Transactional
// share its session and commit with it.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/finchdb/finch/internal/engine"
	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/schema"
)

// Crud is a stateless repository for one entity type T with primary-key
// type ID. Integer and uuid keys are supported.
type Crud[ID comparable, T any] struct {
	ent  *schema.EntityDescriptor
	pk   schema.Field
	exec *engine.Executor
	log  *slog.Logger
}

// New builds a repository for T, deriving and validating its entity
// descriptor. The declared ID type must match the entity's primary-key
// field type; mismatches fail here rather than at first use.
func New[ID comparable, T any](exec *engine.Executor) (*Crud[ID, T], error) {
	desc, err := schema.Describe[T]()
	if err != nil {
		return nil, err
	}
	pk, err := desc.PrimaryKey()
	if err != nil {
		return nil, err
	}
	idType := reflect.TypeOf((*ID)(nil)).Elem()
	if pk.Type != idType {
		return nil, fmt.Errorf("repository for %s declares id type %s but the primary key %q is %s",
			desc.Name, idType, pk.Name, pk.Type)
	}
	return &Crud[ID, T]{
		ent:  &desc,
		pk:   pk,
		exec: exec,
		log:  slog.With("component", "repository", "entity", desc.Name),
	}, nil
}

// Entity returns the repository's entity descriptor.
func (r *Crud[ID, T]) Entity() *schema.EntityDescriptor {
	return r.ent
}

// keyDescriptor builds the descriptor for a lookup on the primary key.
func (r *Crud[ID, T]) keyDescriptor(op method.Op, single bool) method.Descriptor {
	ops := map[string]method.Op{}
	if op != method.OpEquals {
		ops[r.pk.Name] = op
	}
	return method.Descriptor{
		IsSingleResult:  single,
		RequiredFields:  []string{r.pk.Name},
		FieldOperations: ops,
	}
}

// FindByID returns the entity with the given key, or nil.
func (r *Crud[ID, T]) FindByID(ctx context.Context, id ID) (*T, error) {
	desc := r.keyDescriptor(method.OpEquals, true)
	return engine.FindOne[T](ctx, r.exec, r.ent, desc, map[string]any{r.pk.Name: id})
}

// FindAll returns every row of the entity's table.
func (r *Crud[ID, T]) FindAll(ctx context.Context) ([]T, error) {
	desc := method.Descriptor{FieldOperations: map[string]method.Op{}}
	return engine.Find[T](ctx, r.exec, r.ent, desc, map[string]any{})
}

// FindAllByIDs returns the entities matching any of the given keys.
// An empty key list matches nothing.
func (r *Crud[ID, T]) FindAllByIDs(ctx context.Context, ids []ID) ([]T, error) {
	desc := r.keyDescriptor(method.OpIn, false)
	return engine.Find[T](ctx, r.exec, r.ent, desc, map[string]any{r.pk.Name: ids})
}

// Save persists the entity. A zero primary key means insert: integer
// keys are backfilled from the database, uuid keys are generated here.
// A populated key updates the existing row, inserting instead when no
// row matches.
func (r *Crud[ID, T]) Save(ctx context.Context, entity *T) error {
	return r.exec.Manager().Transactional(ctx, func(ctx context.Context) error {
		return r.save(ctx, entity)
	})
}

// SaveAll persists every entity in one transactional scope.
func (r *Crud[ID, T]) SaveAll(ctx context.Context, entities []*T) error {
	return r.exec.Manager().Transactional(ctx, func(ctx context.Context) error {
		for _, entity := range entities {
			if err := r.save(ctx, entity); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the entity's row, keyed by its primary key. Reports
// whether a row was actually deleted; an entity with a zero key is not
// persisted and deletes nothing.
func (r *Crud[ID, T]) Delete(ctx context.Context, entity *T) (bool, error) {
	pkVal := reflect.ValueOf(entity).Elem().Field(r.pk.Index)
	if pkVal.IsZero() {
		return false, nil
	}
	return r.deleteByKey(ctx, pkVal.Interface())
}

// DeleteByID removes the row with the given key, reporting whether one
// existed.
func (r *Crud[ID, T]) DeleteByID(ctx context.Context, id ID) (bool, error) {
	return r.deleteByKey(ctx, id)
}

// DeleteAll removes the given entities by their primary keys.
func (r *Crud[ID, T]) DeleteAll(ctx context.Context, entities []T) (bool, error) {
	ids := make([]any, 0, len(entities))
	for i := range entities {
		pkVal := reflect.ValueOf(&entities[i]).Elem().Field(r.pk.Index)
		if pkVal.IsZero() {
			continue
		}
		ids = append(ids, pkVal.Interface())
	}
	return r.deleteKeys(ctx, ids)
}

// DeleteAllByIDs removes the rows with the given keys. An empty key
// list is a no-op success.
func (r *Crud[ID, T]) DeleteAllByIDs(ctx context.Context, ids []ID) (bool, error) {
	keys := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = id
	}
	return r.deleteKeys(ctx, keys)
}

// Upsert inserts or updates the entity depending on whether a row
// matches the queryBy equality filter. When a match exists its primary
// key is copied onto the entity and the row is updated in place.
func (r *Crud[ID, T]) Upsert(ctx context.Context, entity *T, queryBy map[string]any) error {
	if len(queryBy) == 0 {
		return fmt.Errorf("upsert on %s needs at least one query field", r.ent.Name)
	}
	desc := method.Descriptor{
		IsSingleResult:  true,
		FieldOperations: map[string]method.Op{},
	}
	for field := range queryBy {
		desc.RequiredFields = append(desc.RequiredFields, field)
	}
	sort.Strings(desc.RequiredFields)
	for i := 1; i < len(desc.RequiredFields); i++ {
		desc.Connectors = append(desc.Connectors, method.ConnectorAnd)
	}

	return r.exec.Manager().Transactional(ctx, func(ctx context.Context) error {
		existing, err := engine.FindOne[T](ctx, r.exec, r.ent, desc, queryBy)
		if err != nil {
			return err
		}
		if existing != nil {
			existingKey := reflect.ValueOf(existing).Elem().Field(r.pk.Index)
			reflect.ValueOf(entity).Elem().Field(r.pk.Index).Set(existingKey)
		}
		return r.save(ctx, entity)
	})
}
