package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GEMA-backend/internal/platform/db"
)

type Account struct {
	Username     string
	PasswordHash string
	Role         Role
	IsDisabled   bool
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, username string) (int64, error)
	UpdateUsername(ctx context.Context, oldName, newName string) (int64, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) (int64, error)
}

// Store reads the `login` table.
type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) AccountStore {
	return &Store{db: conn}
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const q = `
SELECT user_name, password_hash, role, is_disabled, created_at
FROM login
WHERE user_name = ?
LIMIT 1
`
	var a Account
	var role string
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&a.Username,
		&a.PasswordHash,
		&role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Role = Role(role)
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO login (user_name, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, 0, UTC_TIMESTAMP(6))
`
	_, err := s.db.ExecContext(ctx, q, a.Username, a.PasswordHash, string(a.Role))
	return err
}

func (s *Store) Delete(ctx context.Context, username string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM login WHERE user_name = ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateUsername(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE login SET user_name = ? WHERE user_name = ?`, newName, oldName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdatePasswordHash(ctx context.Context, username, hash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE login SET password_hash = ? WHERE user_name = ?`, hash, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
