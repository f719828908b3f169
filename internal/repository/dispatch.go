package repository

import (
	"context"
	"fmt"

	"github.com/finchdb/finch/internal/binder"
	"github.com/finchdb/finch/internal/engine"
)

// Bound is a Crud repository plus the dispatch table for its declared
// query methods. Building one is the boot-time binding step: a bad
// method name or signature fails here and prevents startup.
type Bound[ID comparable, T any] struct {
	*Crud[ID, T]
	table *binder.Table
}

// Bind validates and installs the declared methods for r.
func Bind[ID comparable, T any](r *Crud[ID, T], methods []binder.MethodSpec, raws []binder.RawSpec, skip ...string) (*Bound[ID, T], error) {
	table, err := binder.Bind(r.ent.Name+"Repository", r.ent, methods, raws, skip...)
	if err != nil {
		return nil, err
	}
	return &Bound[ID, T]{Crud: r, table: table}, nil
}

// Methods returns the bound method names, sorted.
func (b *Bound[ID, T]) Methods() []string {
	return b.table.Methods()
}

// Call invokes a bound list method by name with arguments keyed by
// parameter name. Works for derived find_all/get_all methods and for
// non-modifying raw methods.
func (b *Bound[ID, T]) Call(ctx context.Context, name string, args map[string]any) ([]T, error) {
	if binding, ok := b.table.Lookup(name); ok {
		if binding.Desc.IsSingleResult {
			return nil, fmt.Errorf("%s.%s returns a single result, use CallOne", b.table.Repository(), name)
		}
		values, err := binding.MapArgs(args)
		if err != nil {
			return nil, err
		}
		return engine.Find[T](ctx, b.exec, b.ent, binding.Desc, values)
	}
	if raw, ok := b.table.LookupRaw(name); ok {
		if raw.Modifying {
			return nil, fmt.Errorf("%s.%s modifies data, use Exec", b.table.Repository(), name)
		}
		return engine.Raw[T](ctx, b.exec, b.ent, raw.SQL, args)
	}
	return nil, fmt.Errorf("%s has no bound method %q", b.table.Repository(), name)
}

// CallOne invokes a bound single-result method by name. For a raw
// method it returns the first row, or nil.
func (b *Bound[ID, T]) CallOne(ctx context.Context, name string, args map[string]any) (*T, error) {
	if binding, ok := b.table.Lookup(name); ok {
		if !binding.Desc.IsSingleResult {
			return nil, fmt.Errorf("%s.%s returns a list, use Call", b.table.Repository(), name)
		}
		values, err := binding.MapArgs(args)
		if err != nil {
			return nil, err
		}
		return engine.FindOne[T](ctx, b.exec, b.ent, binding.Desc, values)
	}
	if raw, ok := b.table.LookupRaw(name); ok {
		if raw.Modifying {
			return nil, fmt.Errorf("%s.%s modifies data, use Exec", b.table.Repository(), name)
		}
		results, err := engine.Raw[T](ctx, b.exec, b.ent, raw.SQL, args)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		return &results[0], nil
	}
	return nil, fmt.Errorf("%s has no bound method %q", b.table.Repository(), name)
}

// Exec invokes a bound modifying raw method, reporting affected rows.
func (b *Bound[ID, T]) Exec(ctx context.Context, name string, args map[string]any) (int64, error) {
	raw, ok := b.table.LookupRaw(name)
	if !ok {
		return 0, fmt.Errorf("%s has no bound raw method %q", b.table.Repository(), name)
	}
	if !raw.Modifying {
		return 0, fmt.Errorf("%s.%s does not modify data, use Call", b.table.Repository(), name)
	}
	return b.exec.Exec(ctx, raw.SQL, args)
}
