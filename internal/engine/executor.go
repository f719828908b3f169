// Package engine executes compiled queries on scoped sessions and maps
// result rows back into entity values.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/querysql"
	"github.com/finchdb/finch/internal/schema"
	"github.com/finchdb/finch/internal/session"
)

// Executor runs derived and raw queries through the session manager, so
// every execution participates in the surrounding transactional scope.
type Executor struct {
	mgr *session.Manager
	log *slog.Logger
}

// New creates an executor over the given session manager.
func New(mgr *session.Manager) *Executor {
	return &Executor{
		mgr: mgr,
		log: slog.With("component", "engine"),
	}
}

// Manager exposes the underlying session manager for callers that need
// to open explicit transactional scopes around multiple executions.
func (e *Executor) Manager() *session.Manager {
	return e.mgr
}

// Find runs a derived list query and scans every row into T.
// The result is never nil: no matches yield an empty slice.
func Find[T any](ctx context.Context, e *Executor, ent *schema.EntityDescriptor, desc method.Descriptor, values map[string]any) ([]T, error) {
	if err := checkEntityType[T](ent); err != nil {
		return nil, err
	}
	out := []T{}
	err := e.mgr.Transactional(ctx, func(ctx context.Context) error {
		rows, err := e.queryDerived(ctx, ent, desc, values)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanStructs[T](rows, ent)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne runs a derived single-result query. It returns the first
// matching row, or nil when nothing matches.
func FindOne[T any](ctx context.Context, e *Executor, ent *schema.EntityDescriptor, desc method.Descriptor, values map[string]any) (*T, error) {
	results, err := Find[T](ctx, e, ent, desc, values)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// FindMaps runs a derived query and returns the rows as column-keyed
// maps. Used for plain-data descriptors that have no Go struct type,
// such as entities loaded from schema files.
func (e *Executor) FindMaps(ctx context.Context, ent *schema.EntityDescriptor, desc method.Descriptor, values map[string]any) ([]map[string]any, error) {
	var out []map[string]any
	err := e.mgr.Transactional(ctx, func(ctx context.Context) error {
		rows, err := e.queryDerived(ctx, ent, desc, values)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanMaps(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// queryDerived compiles a descriptor against the entity and runs the
// SELECT on the current scoped session.
func (e *Executor) queryDerived(ctx context.Context, ent *schema.EntityDescriptor, desc method.Descriptor, values map[string]any) (*sql.Rows, error) {
	filter, err := querysql.BuildFilter(desc, ent.ColumnsByField(), values)
	if err != nil {
		return nil, err
	}
	query, params, err := querysql.CompileSelect(ent.Table, ent.Columns(), filter)
	if err != nil {
		return nil, err
	}
	sess, err := e.mgr.Current(ctx)
	if err != nil {
		return nil, err
	}
	e.log.Debug("executing derived query", "entity", ent.Name, "sql", query, "session_id", sess.ID())
	return sess.QueryContext(ctx, query, params...)
}

// checkEntityType guards the generic entry points against a descriptor
// for a different struct type. Plain-data descriptors (nil GoType)
// cannot be scanned into structs at all.
func checkEntityType[T any](ent *schema.EntityDescriptor) error {
	want := reflect.TypeOf((*T)(nil)).Elem()
	if ent.GoType == nil {
		return fmt.Errorf("entity %s has no Go type; use FindMaps for plain-data descriptors", ent.Name)
	}
	if ent.GoType != want {
		return fmt.Errorf("entity %s is %s, not %s", ent.Name, ent.GoType, want)
	}
	return nil
}
