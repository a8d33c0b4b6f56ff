package grouping

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"time"

	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

func (s *Store) ActivityExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM kegiatan WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Attendees: members marked Hadir for the activity.
func (s *Store) Attendees(ctx context.Context, activityID int64) ([]Attendee, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT g.id, g.nama, g.jenis_kelamin, g.kelompok
	FROM absensi a
	JOIN data_generus g ON g.id = a.generus_id
	WHERE a.kegiatan_id = ? AND a.status_kehadiran = 'Hadir'
	ORDER BY g.nama ASC, g.id ASC`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.ID, &a.Name, &a.Gender, &a.Group); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SavedRows(ctx context.Context, activityID int64) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, id_kegiatan, generus_id, nama, no_grup, kelompok
	FROM grup
	WHERE id_kegiatan = ?
	ORDER BY no_grup ASC, id ASC`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.ActivityID, &r.MemberID, &r.Name, &r.No, &r.Kelompok); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceRows drops every grup row of the activity and writes rows in one
// batch. Run it inside a transaction.
func (s *Store) ReplaceRows(ctx context.Context, activityID int64, rows []Row) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM grup WHERE id_kegiatan = ?`, activityID); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	var buf bytes.Buffer
	args := make([]any, 0, len(rows)*5)
	buf.WriteString(`INSERT INTO grup (id_kegiatan, generus_id, nama, no_grup, kelompok) VALUES `)
	for i, r := range rows {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, activityID, r.MemberID, r.Name, r.No, r.Kelompok)
	}
	_, err := s.db.ExecContext(ctx, buf.String(), args...)
	return err
}

func (s *Store) DeleteRow(ctx context.Context, activityID, memberID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grup WHERE id_kegiatan = ? AND generus_id = ?`, activityID, memberID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ResetAttendance sets the member back to Belum through the attendance
// store so the same upsert rules apply.
func (s *Store) ResetAttendance(ctx context.Context, activityID, memberID int64, now time.Time) error {
	_, _, err := attendance.NewStore(s.db).Upsert(ctx, activityID, memberID, attendance.StatusBelum, now)
	return err
}
