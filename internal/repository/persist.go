package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/finchdb/finch/internal/querysql"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// save writes one entity on the current scoped session. Callers hold a
// transactional scope already.
func (r *Crud[ID, T]) save(ctx context.Context, entity *T) error {
	rv := reflect.ValueOf(entity).Elem()
	pkVal := rv.Field(r.pk.Index)

	if pkVal.IsZero() {
		return r.insert(ctx, entity)
	}

	sess, err := r.exec.Manager().Current(ctx)
	if err != nil {
		return err
	}

	columns := make([]string, 0, len(r.ent.Fields)-1)
	values := make([]any, 0, len(r.ent.Fields))
	for _, f := range r.ent.Fields {
		if f.IsPrimary {
			continue
		}
		columns = append(columns, f.Column)
		values = append(values, rv.Field(f.Index).Interface())
	}
	query, err := querysql.CompileUpdateByKey(r.ent.Table, columns, r.pk.Column)
	if err != nil {
		return err
	}
	values = append(values, pkVal.Interface())

	res, err := sess.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.ent.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Populated key with no matching row: the caller assigned the
		// key themselves, insert it as given.
		return r.insert(ctx, entity)
	}
	r.log.Debug("entity updated", "table", r.ent.Table, "key", pkVal.Interface())
	return nil
}

// insert writes a new row. Zero integer keys are left to the database
// and backfilled from LastInsertId; zero uuid keys are generated here.
func (r *Crud[ID, T]) insert(ctx context.Context, entity *T) error {
	rv := reflect.ValueOf(entity).Elem()
	pkVal := rv.Field(r.pk.Index)

	autoKey := false
	if pkVal.IsZero() {
		switch {
		case r.pk.Type == uuidType:
			pkVal.Set(reflect.ValueOf(uuid.New()))
		case pkVal.CanInt():
			autoKey = true
		default:
			return fmt.Errorf("cannot generate a key for %s field %q of type %s",
				r.ent.Name, r.pk.Name, r.pk.Type)
		}
	}

	columns := make([]string, 0, len(r.ent.Fields))
	values := make([]any, 0, len(r.ent.Fields))
	for _, f := range r.ent.Fields {
		if f.IsPrimary && autoKey {
			continue
		}
		columns = append(columns, f.Column)
		values = append(values, rv.Field(f.Index).Interface())
	}
	query, err := querysql.CompileInsert(r.ent.Table, columns)
	if err != nil {
		return err
	}

	sess, err := r.exec.Manager().Current(ctx)
	if err != nil {
		return err
	}
	res, err := sess.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.ent.Name, err)
	}
	if autoKey {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read generated key for %s: %w", r.ent.Name, err)
		}
		pkVal.SetInt(id)
	}
	r.log.Debug("entity inserted", "table", r.ent.Table, "key", pkVal.Interface())
	return nil
}

// deleteByKey removes one row by primary key.
func (r *Crud[ID, T]) deleteByKey(ctx context.Context, key any) (bool, error) {
	query, err := querysql.CompileDeleteByKey(r.ent.Table, r.pk.Column)
	if err != nil {
		return false, err
	}
	return r.runDelete(ctx, query, []any{key})
}

// deleteKeys removes every row whose key is in the list. An empty list
// is a no-op success.
func (r *Crud[ID, T]) deleteKeys(ctx context.Context, keys []any) (bool, error) {
	if len(keys) == 0 {
		return true, nil
	}
	query, err := querysql.CompileDeleteByKeyIn(r.ent.Table, r.pk.Column, len(keys))
	if err != nil {
		return false, err
	}
	return r.runDelete(ctx, query, keys)
}

func (r *Crud[ID, T]) runDelete(ctx context.Context, query string, params []any) (bool, error) {
	var affected int64
	err := r.exec.Manager().Transactional(ctx, func(ctx context.Context) error {
		sess, err := r.exec.Manager().Current(ctx)
		if err != nil {
			return err
		}
		res, err := sess.ExecContext(ctx, query, params...)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", r.ent.Table, err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	r.log.Debug("rows deleted", "table", r.ent.Table, "count", affected)
	return affected > 0, nil
}
