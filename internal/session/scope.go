package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// ErrNoActiveScope is returned by Current outside a transactional scope.
var ErrNoActiveScope = errors.New("no active transactional scope")

type scopeKey struct{}

// scope is the per-logical-context record: a reentrancy depth counter
// and the shared session. Nesting within one context is strictly
// sequential, so no locking is needed on the record itself.
type scope struct {
	depth int
	sess  *Session
}

// Manager owns session lifecycles over one database handle.
type Manager struct {
	db  *sql.DB
	log *slog.Logger
}

// NewManager creates a scope manager for the given database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:  db,
		log: slog.With("component", "session"),
	}
}

// Bind returns a context carrying a fresh empty scope record. Request
// handlers call this once at the top of a logical task; Transactional
// installs a scope on demand when the context has none.
func Bind(ctx context.Context) context.Context {
	if scopeFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &scope{})
}

func scopeFrom(ctx context.Context) *scope {
	sc, _ := ctx.Value(scopeKey{}).(*scope)
	return sc
}

// ensureScope returns the context's scope record, installing one when
// absent.
func ensureScope(ctx context.Context) (context.Context, *scope) {
	if sc := scopeFrom(ctx); sc != nil {
		return ctx, sc
	}
	sc := &scope{}
	return context.WithValue(ctx, scopeKey{}, sc), sc
}

// Depth reports the current reentrancy depth (0 = idle).
func (m *Manager) Depth(ctx context.Context) int {
	sc := scopeFrom(ctx)
	if sc == nil {
		return 0
	}
	return sc.depth
}

// InTransaction reports whether the context is inside an active scope.
func (m *Manager) InTransaction(ctx context.Context) bool {
	return m.Depth(ctx) > 0
}

// Current returns the scope's session, creating it lazily on first
// access. It fails with ErrNoActiveScope when the context is not inside
// a transactional scope: the session exists iff depth > 0, except the
// window between scope entry and this first access.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	sc := scopeFrom(ctx)
	if sc == nil || sc.depth == 0 {
		return nil, ErrNoActiveScope
	}
	if sc.sess == nil {
		sess, err := newSession(ctx, m.db, m.log)
		if err != nil {
			return nil, err
		}
		sc.sess = sess
	}
	return sc.sess, nil
}

// Clear resets the context's scope to idle regardless of depth, closing
// any open session. It is a safety net for logical-task boundaries
// (e.g. the end of a request), not part of the normal enter/exit
// protocol; an uncommitted session is rolled back on close.
func (m *Manager) Clear(ctx context.Context) {
	sc := scopeFrom(ctx)
	if sc == nil {
		return
	}
	if sc.sess != nil {
		if sc.depth > 0 {
			m.log.Warn("clearing scope with active depth", "depth", sc.depth, "session_id", sc.sess.id)
		}
		sc.sess.close()
		sc.sess = nil
	}
	sc.depth = 0
}
