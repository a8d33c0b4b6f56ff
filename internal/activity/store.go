package activity

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"GEMA-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func where(q string) (string, []any) {
	q = strings.TrimSpace(q)
	if q == "" {
		return ` WHERE 1=1`, nil
	}
	pat := "%" + likeEscaper.Replace(q) + "%"
	return ` WHERE (nama_giat LIKE ? OR tempat LIKE ? OR DATE_FORMAT(tgl_giat, '%Y-%m-%d') LIKE ?)`, []any{pat, pat, pat}
}

func (s *Store) List(ctx context.Context, f Filter) ([]Activity, int64, error) {
	w, args := where(f.Query)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kegiatan`+w, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT id, nama_giat, tgl_giat, tempat, created_at FROM kegiatan`)
	sb.WriteString(w)
	sb.WriteString(` ORDER BY ` + f.Sort.orderBy())
	qargs := append([]any{}, args...)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		qargs = append(qargs, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), qargs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Title, &a.Date, &a.Place, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (*Activity, error) {
	var a Activity
	err := s.db.QueryRowContext(ctx, `
	SELECT id, nama_giat, tgl_giat, tempat, created_at
	FROM kegiatan WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Date, &a.Place, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Insert(ctx context.Context, a *Activity) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO kegiatan (nama_giat, tgl_giat, tempat, created_at)
	VALUES (?, ?, ?, ?)`,
		a.Title, a.Date.Format(DateLayout), a.Place, a.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) Update(ctx context.Context, a *Activity) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE kegiatan SET nama_giat = ?, tgl_giat = ?, tempat = ?
	WHERE id = ?`,
		a.Title, a.Date.Format(DateLayout), a.Place, a.ID,
	)
	return err
}

// Delete removes the activity with its absensi and grup rows. Run it
// inside a transaction.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM absensi WHERE kegiatan_id = ?`, id); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM grup WHERE id_kegiatan = ?`, id); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM kegiatan WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
