package engine

import (
	"context"
	"fmt"

	"github.com/finchdb/finch/internal/querysql"
	"github.com/finchdb/finch/internal/schema"
)

// Raw runs a hand-written SELECT with named :param placeholders and
// scans the rows into T. Every named parameter must be bound in args and
// every bound arg must appear in the query.
func Raw[T any](ctx context.Context, e *Executor, ent *schema.EntityDescriptor, query string, args map[string]any) ([]T, error) {
	if err := checkEntityType[T](ent); err != nil {
		return nil, err
	}
	expanded, params, err := expandNamed(query, args)
	if err != nil {
		return nil, err
	}
	out := []T{}
	err = e.mgr.Transactional(ctx, func(ctx context.Context) error {
		sess, err := e.mgr.Current(ctx)
		if err != nil {
			return err
		}
		e.log.Debug("executing raw query", "entity", ent.Name, "sql", expanded, "session_id", sess.ID())
		rows, err := sess.QueryContext(ctx, expanded, params...)
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

// Exec runs a hand-written modifying statement with named :param
// placeholders and reports the number of affected rows. It commits
// through the surrounding scope like every other execution.
func (e *Executor) Exec(ctx context.Context, query string, args map[string]any) (int64, error) {
	expanded, params, err := expandNamed(query, args)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = e.mgr.Transactional(ctx, func(ctx context.Context) error {
		sess, err := e.mgr.Current(ctx)
		if err != nil {
			return err
		}
		e.log.Debug("executing raw statement", "sql", expanded, "session_id", sess.ID())
		res, err := sess.ExecContext(ctx, expanded, params...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// expandNamed rewrites :name placeholders to ? and orders the bound
// values to match. Single-quoted literals are left untouched. A name in
// the query with no bound value, or a bound value never referenced,
// fails with an ArgumentError.
func expandNamed(query string, args map[string]any) (string, []any, error) {
	var (
		sql    []byte
		params []any
		used   = make(map[string]bool, len(args))
	)
	for i := 0; i < len(query); {
		c := query[i]
		if c == '\'' {
			end := i + 1
			for end < len(query) && query[end] != '\'' {
				end++
			}
			if end < len(query) {
				end++
			}
			sql = append(sql, query[i:end]...)
			i = end
			continue
		}
		if c == ':' && i+1 < len(query) && isNameStart(query[i+1]) {
			end := i + 1
			for end < len(query) && isNameChar(query[end]) {
				end++
			}
			name := query[i+1 : end]
			value, ok := args[name]
			if !ok {
				return "", nil, &querysql.ArgumentError{
					Code:    querysql.ErrCodeInvalidArgument,
					Field:   name,
					Message: "named parameter has no bound value",
				}
			}
			used[name] = true
			sql = append(sql, '?')
			params = append(params, value)
			i = end
			continue
		}
		sql = append(sql, c)
		i++
	}
	for name := range args {
		if !used[name] {
			return "", nil, &querysql.ArgumentError{
				Code:    querysql.ErrCodeInvalidArgument,
				Field:   name,
				Message: fmt.Sprintf("bound value %q does not appear in the query", name),
			}
		}
	}
	return string(sql), params, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
