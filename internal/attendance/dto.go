package attendance

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type SetStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type RecordResponse struct {
	ID         int64     `json:"id"`
	ActivityID int64     `json:"kegiatan_id"`
	MemberID   int64     `json:"generus_id"`
	Status     Status    `json:"status_kehadiran"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		MemberID:   r.MemberID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type ActivityResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"nama_giat"`
	Date  string `json:"tgl_giat"` // YYYY-MM-DD
	Place string `json:"tempat"`
}

// SheetRow is one roster member joined with its attendance record.
type SheetRow struct {
	MemberID     int64     `json:"generus_id"`
	Name         string    `json:"nama"`
	Gender       string    `json:"jenis_kelamin"`
	Group        string    `json:"kelompok"`
	MemberStatus string    `json:"status"`
	BirthDate    *string   `json:"tgl_lahir,omitempty"`
	RecordID     int64     `json:"absensi_id"`
	Attendance   Status    `json:"status_kehadiran"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SheetResponse struct {
	Activity ActivityResponse `json:"kegiatan"`
	Rows     []SheetRow       `json:"rows"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Stats    []GroupStat      `json:"stats"`
}

// Rows joins the roster with its records in roster order.
func (sh *Sheet) Rows() []SheetRow {
	byMember := make(map[int64]Record, len(sh.Records))
	for _, r := range sh.Records {
		byMember[r.MemberID] = r
	}

	out := make([]SheetRow, 0, len(sh.Records))
	seen := make(map[int64]struct{}, len(sh.Roster))
	for _, m := range sh.Roster {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		row := SheetRow{
			MemberID:     m.ID,
			Name:         m.Name,
			Gender:       m.Gender,
			Group:        m.Group,
			MemberStatus: m.Status,
			Attendance:   StatusBelum,
		}
		if m.BirthDate.Valid {
			d := m.BirthDate.Time.Format("2006-01-02")
			row.BirthDate = &d
		}
		if r, ok := byMember[m.ID]; ok {
			row.RecordID = r.ID
			row.Attendance = r.Status
			row.UpdatedAt = r.UpdatedAt
		}
		out = append(out, row)
	}
	return out
}

// FilterRows keeps the rows where q occurs in the name, gender, group,
// member status or attendance status, ignoring case.
func FilterRows(rows []SheetRow, q string) []SheetRow {
	if q == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]SheetRow, 0, len(rows))
	for _, r := range rows {
		for _, field := range []string{r.Name, r.Gender, r.Group, r.MemberStatus, string(r.Attendance)} {
			if strings.Contains(fold.String(field), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// paginate clamps limit/offset to the slice; limit <= 0 returns everything
// from offset.
func paginate(rows []SheetRow, limit, offset int) []SheetRow {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []SheetRow{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
