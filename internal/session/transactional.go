package session

import "context"

// Transactional runs fn inside the context's transactional scope.
//
// Behavior summary:
//   - If this call is the outermost (depth 0→1): the session is created
//     lazily on first access inside fn; on success the session commits,
//     on error it rolls back; the session is closed on the way out.
//   - If called within an existing scope: the session is shared and no
//     commit, rollback, or close happens here - that is delegated
//     entirely to the outermost call. Writes made at any level are
//     visible to, and rolled back together with, the other levels.
//
// fn's error (or panic) propagates unchanged; the manager never swallows
// or wraps it. Exit bookkeeping (depth decrement, close at depth 0) runs
// on every path.
func (m *Manager) Transactional(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, sc := ensureScope(ctx)
	sc.depth++
	entryDepth := sc.depth

	defer func() {
		sc.depth--
		if sc.depth <= 0 {
			sc.depth = 0
			if sc.sess != nil {
				// Uncommitted work (error or panic path) rolls back here.
				sc.sess.close()
				sc.sess = nil
			}
		}
	}()

	if err := fn(ctx); err != nil {
		if entryDepth == 1 && sc.sess != nil {
			sc.sess.rollback()
		}
		return err
	}

	if entryDepth == 1 && sc.sess != nil {
		if err := sc.sess.commit(); err != nil {
			return err
		}
	}
	return nil
}
