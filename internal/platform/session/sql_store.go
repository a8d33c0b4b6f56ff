package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GEMA-backend/internal/platform/db"
)

// SQLBackend keeps session keys in the session_kv table.
type SQLBackend struct{ db db.DBTX }

func NewSQLBackend(conn db.DBTX) *SQLBackend { return &SQLBackend{db: conn} }

func (b *SQLBackend) Scope(sessionID string) Store {
	return &sqlStore{db: b.db, sid: sessionID}
}

// PurgeBefore drops every session row untouched since the cutoff. Rows of
// expired sessions are normally removed lazily by the gate; this catches
// sessions whose client never came back.
func (b *SQLBackend) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM session_kv WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type sqlStore struct {
	db  db.DBTX
	sid string
}

func (s *sqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT v FROM session_kv WHERE session_id = ? AND k = ? LIMIT 1`
	var v string
	err := s.db.QueryRowContext(ctx, q, s.sid, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO session_kv (session_id, k, v, updated_at)
VALUES (?, ?, ?, UTC_TIMESTAMP(6))
ON DUPLICATE KEY UPDATE
v          = VALUES(v),
updated_at = VALUES(updated_at)`
	_, err := s.db.ExecContext(ctx, q, s.sid, key, value)
	return err
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE session_id = ? AND k = ?`, s.sid, key)
	return err
}
