package member

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GEMA-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// DB scan target
type memberRow struct {
	ID        int64
	Name      string
	Gender    string
	Group     string
	Status    string
	BirthDate sql.NullTime
	CreatedAt time.Time
}

func (r memberRow) toModel() Member {
	m := Member{
		ID:        r.ID,
		Name:      r.Name,
		Gender:    r.Gender,
		Group:     r.Group,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.BirthDate.Valid {
		t := r.BirthDate.Time.UTC()
		m.BirthDate = &t
	}
	return m
}

const selectMember = `SELECT id, nama, jenis_kelamin, kelompok, status, tgl_lahir, created_at FROM data_generus`

func scanMember(sc interface{ Scan(...any) error }) (Member, error) {
	var r memberRow
	if err := sc.Scan(&r.ID, &r.Name, &r.Gender, &r.Group, &r.Status, &r.BirthDate, &r.CreatedAt); err != nil {
		return Member{}, err
	}
	return r.toModel(), nil
}

// List: newest first.
func (s *Store) List(ctx context.Context) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, selectMember+` ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (*Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, selectMember+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (s *Store) Insert(ctx context.Context, m *Member) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO data_generus (nama, jenis_kelamin, kelompok, status, tgl_lahir, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.Gender, m.Group, m.Status, nullDate(m.BirthDate), m.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) Update(ctx context.Context, m *Member) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE data_generus
	SET nama = ?, jenis_kelamin = ?, kelompok = ?, status = ?, tgl_lahir = ?
	WHERE id = ?`,
		m.Name, m.Gender, m.Group, m.Status, nullDate(m.BirthDate), m.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the member with its absensi and grup rows. Run it inside
// a transaction.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM absensi WHERE generus_id = ?`, id); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM grup WHERE generus_id = ?`, id); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM data_generus WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
