package member

import "time"

type Member struct {
	ID        int64      `json:"id"`
	Name      string     `json:"nama"`
	Gender    string     `json:"jenis_kelamin"`
	Group     string     `json:"kelompok"`
	Status    string     `json:"status"`
	BirthDate *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// Statuses a member can have, in form order.
var Statuses = []string{
	"Pelajar",
	"Lulus Pelajar",
	"Mahasiswa",
	"Mahasiswa & Kerja",
	"Lulus Kuliah",
	"Kerja",
	"MS",
	"MT",
}

type MemberRequest struct {
	Name      string `json:"nama" validate:"required,max=128"`
	Gender    string `json:"jenis_kelamin" validate:"required,oneof=L P"`
	Group     string `json:"kelompok" validate:"required,kelompok"`
	Status    string `json:"status" validate:"required,oneof=Pelajar 'Lulus Pelajar' Mahasiswa 'Mahasiswa & Kerja' 'Lulus Kuliah' Kerja MS MT"`
	BirthDate string `json:"tgl_lahir"`
}

type MemberResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nama"`
	Gender    string    `json:"jenis_kelamin"`
	Group     string    `json:"kelompok"`
	Status    string    `json:"status"`
	BirthDate *string   `json:"tgl_lahir"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Items  []MemberResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func toResponse(m Member) MemberResponse {
	r := MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Gender:    m.Gender,
		Group:     m.Group,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
	if m.BirthDate != nil {
		s := m.BirthDate.Format(DateLayout)
		r.BirthDate = &s
	}
	return r
}
