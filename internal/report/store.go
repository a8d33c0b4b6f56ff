package report

import (
	"context"

	"GEMA-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

func (s *Store) MemberCounts(ctx context.Context) ([]CountRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT jenis_kelamin, kelompok, status, COUNT(*)
	FROM data_generus
	GROUP BY jenis_kelamin, kelompok, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountRow
	for rows.Next() {
		var r CountRow
		if err := rows.Scan(&r.Gender, &r.Group, &r.Status, &r.N); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ActivityCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kegiatan`).Scan(&n)
	return n, err
}
