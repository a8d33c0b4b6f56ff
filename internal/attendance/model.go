package attendance

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusBelum Status = "Belum"
	StatusHadir Status = "Hadir"
	StatusIzin  Status = "Izin"
)

func (s Status) Valid() bool {
	return s == StatusBelum || s == StatusHadir || s == StatusIzin
}

// Groups is the canonical kelompok order used for statistics and reports.
var Groups = []string{
	"Linggar",
	"Parakan Muncang",
	"Cikopo",
	"Bojong Koneng",
	"Cikancung 1",
	"Cikancung 2",
}

// Record is one absensi row: at most one per (activity, member).
type Record struct {
	ID         int64
	ActivityID int64
	MemberID   int64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RosterMember is the slice of data_generus the reconciler needs.
type RosterMember struct {
	ID        int64
	Name      string
	Gender    string
	Group     string
	Status    string
	BirthDate sql.NullTime
}

type Activity struct {
	ID    int64
	Title string
	Date  time.Time
	Place string
}

type GroupStat struct {
	Group      string  `json:"kelompok"`
	Total      int     `json:"total"`
	Hadir      int     `json:"hadir"`
	Izin       int     `json:"izin"`
	Belum      int     `json:"belum"`
	Percentage float64 `json:"percentage"`
}

// DB scan target
type recordRow struct {
	ID         int64
	ActivityID int64
	MemberID   int64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r recordRow) toModel() Record {
	return Record{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		MemberID:   r.MemberID,
		Status:     Status(r.Status),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}
