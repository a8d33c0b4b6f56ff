package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"time"

	"GEMA-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

func (s *Store) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	var a Activity
	err := s.db.QueryRowContext(ctx, `
	SELECT id, nama_giat, tgl_giat, tempat
	FROM kegiatan
	WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Date, &a.Place)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) MemberExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM data_generus WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Roster: every member, ordered by name.
func (s *Store) Roster(ctx context.Context) ([]RosterMember, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, nama, jenis_kelamin, kelompok, status, tgl_lahir
	FROM data_generus
	ORDER BY nama ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterMember
	for rows.Next() {
		var m RosterMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Gender, &m.Group, &m.Status, &m.BirthDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListByActivity(ctx context.Context, activityID int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, kegiatan_id, generus_id, status_kehadiran, created_at, updated_at
	FROM absensi
	WHERE kegiatan_id = ?
	ORDER BY id ASC`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.ID, &r.ActivityID, &r.MemberID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

// InsertMissing writes all records in one statement. INSERT IGNORE on the
// (kegiatan_id, generus_id) unique key makes a rerun, or a concurrent
// reconcile of the same activity, a no-op for rows that already exist.
func (s *Store) InsertMissing(ctx context.Context, recs []Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	args := make([]any, 0, len(recs)*5)
	buf.WriteString(`INSERT IGNORE INTO absensi (kegiatan_id, generus_id, status_kehadiran, created_at, updated_at) VALUES `)
	for i, r := range recs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, r.ActivityID, r.MemberID, string(r.Status), r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	}
	res, err := s.db.ExecContext(ctx, buf.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Upsert: update the status when the (activity, member) row exists, insert
// it otherwise. created=true when a new row was written.
func (s *Store) Upsert(ctx context.Context, activityID, memberID int64, status Status, now time.Time) (Record, bool, error) {
	// INSERT ... ON DUPLICATE KEY UPDATE
	// - new row: RowsAffected = 1
	// - updated: RowsAffected = 2 (0 when the status did not change)
	const q = `
	INSERT INTO absensi (kegiatan_id, generus_id, status_kehadiran, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
	status_kehadiran = VALUES(status_kehadiran),
	updated_at       = VALUES(updated_at)`

	res, err := s.db.ExecContext(ctx, q, activityID, memberID, string(status), now.UTC(), now.UTC())
	if err != nil {
		return Record{}, false, err
	}
	aff, _ := res.RowsAffected()
	created := aff == 1

	var r recordRow
	err = s.db.QueryRowContext(ctx, `
	SELECT id, kegiatan_id, generus_id, status_kehadiran, created_at, updated_at
	FROM absensi
	WHERE kegiatan_id = ? AND generus_id = ?`, activityID, memberID,
	).Scan(&r.ID, &r.ActivityID, &r.MemberID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, created, ErrInternal("written but not found")
		}
		return Record{}, created, err
	}
	return r.toModel(), created, nil
}

func (s *Store) Delete(ctx context.Context, activityID, memberID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM absensi WHERE kegiatan_id = ? AND generus_id = ?`, activityID, memberID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
