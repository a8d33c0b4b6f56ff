package grouping

// GroupCount is the number of numbered groups, 1..GroupCount.
const GroupCount = 8

const (
	GenderMale   = "L"
	GenderFemale = "P"
)

// Attendee is a member marked Hadir for the activity.
type Attendee struct {
	ID     int64  `json:"generus_id"`
	Name   string `json:"nama"`
	Gender string `json:"jenis_kelamin"`
	Group  string `json:"kelompok"`
}

type Group struct {
	No     int        `json:"no_grup"`
	Male   []Attendee `json:"laki_laki"`
	Female []Attendee `json:"perempuan"`
}

// Assignment places one member in a numbered group.
type Assignment struct {
	MemberID int64 `json:"generus_id" binding:"required"`
	No       int   `json:"no_grup" binding:"required"`
}

// Row is one persisted grup row.
type Row struct {
	ID         int64
	ActivityID int64
	MemberID   int64
	Name       string
	No         int
	Kelompok   string
}

// View is the grouping of one activity. Saved is false when nothing has
// been persisted and Groups was derived from attendance.
type View struct {
	ActivityID int64      `json:"kegiatan_id"`
	Saved      bool       `json:"saved"`
	Groups     []Group    `json:"groups"`
	Unassigned []Attendee `json:"unassigned"`
}

func emptyGroups() []Group {
	out := make([]Group, GroupCount)
	for i := range out {
		out[i] = Group{No: i + 1, Male: []Attendee{}, Female: []Attendee{}}
	}
	return out
}

func validNo(no int) bool { return no >= 1 && no <= GroupCount }

// Assignments flattens the view, men before women within each group.
func (v *View) Assignments() []Assignment {
	var out []Assignment
	for _, g := range v.Groups {
		for _, a := range g.Male {
			out = append(out, Assignment{MemberID: a.ID, No: g.No})
		}
		for _, a := range g.Female {
			out = append(out, Assignment{MemberID: a.ID, No: g.No})
		}
	}
	return out
}
