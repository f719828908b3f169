package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Session is one unit of work: a database transaction tagged with an id
// for log correlation. Its lifecycle is owned exclusively by the scope
// manager between enter(0→1) and the matching exit(1→0); everything in
// between merely borrows it.
type Session struct {
	id        uuid.UUID
	tx        *sql.Tx
	log       *slog.Logger
	committed bool
	closed    bool
}

func newSession(ctx context.Context, db *sql.DB, log *slog.Logger) (*Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	s := &Session{id: uuid.New(), tx: tx, log: log}
	s.log.Debug("session opened", "session_id", s.id)
	return s, nil
}

// ID returns the session's correlation id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// ExecContext runs a statement on the session's transaction.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query on the session's transaction.
// Callers are responsible for closing the returned rows.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the session's transaction.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.tx.QueryRowContext(ctx, query, args...)
}

func (s *Session) commit() error {
	if s.closed || s.committed {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.committed = true
	s.log.Debug("session committed", "session_id", s.id)
	return nil
}

func (s *Session) rollback() {
	if s.closed || s.committed {
		return
	}
	if err := s.tx.Rollback(); err != nil {
		s.log.Warn("session rollback failed", "session_id", s.id, "error", err)
		return
	}
	s.log.Debug("session rolled back", "session_id", s.id)
}

// close discards the session. An uncommitted transaction is rolled back.
func (s *Session) close() {
	if s.closed {
		return
	}
	if !s.committed {
		// Rollback is the safe default on every non-commit exit path,
		// including panics unwinding through the scope manager.
		if err := s.tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.log.Warn("session close rollback failed", "session_id", s.id, "error", err)
		}
	}
	s.closed = true
	s.log.Debug("session closed", "session_id", s.id)
}
