// Package session manages the scoped unit of work for transactional
// operations.
//
// A scope is carried in the context.Context and holds a reentrancy depth
// counter plus a lazily created session (a database transaction). Nested
// transactional calls share the one session; only the outermost call
// commits, rolls back, or closes it. Independent context chains get
// independent scopes, so concurrent requests never share a session and
// no locking is needed.
package session
