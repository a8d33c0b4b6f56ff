package activity

import "time"

const DateLayout = "2006-01-02"

type Activity struct {
	ID        int64
	Title     string
	Date      time.Time
	Place     string
	CreatedAt time.Time
}

// Sort orders for List.
type Sort string

const (
	SortNewest Sort = "kegiatan" // newest created first
	SortDate   Sort = "tanggal"  // latest activity date first
	SortPlace  Sort = "tempat"   // place A-Z
)

func (s Sort) orderBy() string {
	switch s {
	case SortDate:
		return "tgl_giat DESC, id DESC"
	case SortPlace:
		return "tempat ASC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

type Filter struct {
	Query  string
	Sort   Sort
	Limit  int
	Offset int
}

type ActivityRequest struct {
	Title string `json:"nama_giat" binding:"required"`
	Date  string `json:"tgl_giat" binding:"required"` // YYYY-MM-DD
	Place string `json:"tempat" binding:"required"`
}

type ActivityResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"nama_giat"`
	Date      string    `json:"tgl_giat"`
	Place     string    `json:"tempat"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Items  []ActivityResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func toResponse(a Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		Title:     a.Title,
		Date:      a.Date.Format(DateLayout),
		Place:     a.Place,
		CreatedAt: a.CreatedAt,
	}
}
