package attendance

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MissingRecords returns a Belum record for every roster member without
// one in existing. Duplicate roster entries yield a single record.
func MissingRecords(activityID int64, roster []RosterMember, existing []Record, now time.Time) []Record {
	have := make(map[int64]struct{}, len(existing))
	for _, r := range existing {
		have[r.MemberID] = struct{}{}
	}

	var out []Record
	for _, m := range roster {
		if _, ok := have[m.ID]; ok {
			continue
		}
		have[m.ID] = struct{}{}
		out = append(out, Record{
			ActivityID: activityID,
			MemberID:   m.ID,
			Status:     StatusBelum,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return out
}

// AlignToRoster picks exactly one record per roster member, in roster
// order. Members with no record are returned in missing.
func AlignToRoster(roster []RosterMember, records []Record) (aligned []Record, missing []int64) {
	byMember := make(map[int64]Record, len(records))
	for _, r := range records {
		if _, dup := byMember[r.MemberID]; !dup {
			byMember[r.MemberID] = r
		}
	}

	seen := make(map[int64]struct{}, len(roster))
	aligned = make([]Record, 0, len(roster))
	for _, m := range roster {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		r, ok := byMember[m.ID]
		if !ok {
			missing = append(missing, m.ID)
			continue
		}
		aligned = append(aligned, r)
	}
	return aligned, missing
}

// ComputeGroupStats counts presence per kelompok. A member with no record
// counts as Belum exactly like one whose record says Belum. Izin members
// stay in Total but are left out of the percentage denominator.
func ComputeGroupStats(roster []RosterMember, records []Record, groups []string) []GroupStat {
	if groups == nil {
		groups = Groups
	}

	groupOf := make(map[int64]string, len(roster))
	totals := make(map[string]int, len(groups))
	for _, m := range roster {
		if _, dup := groupOf[m.ID]; dup {
			continue
		}
		groupOf[m.ID] = m.Group
		totals[m.Group]++
	}

	type tally struct{ recorded, hadir, izin, belum int }
	tallies := make(map[string]*tally, len(groups))
	counted := make(map[int64]struct{}, len(records))
	for _, r := range records {
		g, ok := groupOf[r.MemberID]
		if !ok {
			continue
		}
		if _, dup := counted[r.MemberID]; dup {
			continue
		}
		counted[r.MemberID] = struct{}{}

		t := tallies[g]
		if t == nil {
			t = &tally{}
			tallies[g] = t
		}
		t.recorded++
		switch r.Status {
		case StatusHadir:
			t.hadir++
		case StatusIzin:
			t.izin++
		case StatusBelum:
			t.belum++
		}
	}

	out := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		st := GroupStat{Group: g, Total: totals[g]}
		if t := tallies[g]; t != nil {
			st.Hadir = t.hadir
			st.Izin = t.izin
			st.Belum = st.Total - t.recorded + t.belum
		} else {
			st.Belum = st.Total
		}
		st.Percentage = Percentage(st.Hadir, st.Total, st.Izin)
		out = append(out, st)
	}
	return out
}

// Percentage is hadir / (total - izin) * 100, or 0 when nobody is left in
// the denominator.
func Percentage(hadir, total, izin int) float64 {
	denom := total - izin
	if denom <= 0 {
		return 0
	}
	return float64(hadir) / float64(denom) * 100
}

// SortRoster orders members by name the way an Indonesian reader expects,
// ignoring case and diacritics; ties break on id.
func SortRoster(roster []RosterMember) {
	col := collate.New(language.Indonesian, collate.IgnoreCase, collate.Loose)
	sort.SliceStable(roster, func(i, j int) bool {
		if c := col.CompareString(roster[i].Name, roster[j].Name); c != 0 {
			return c < 0
		}
		return roster[i].ID < roster[j].ID
	})
}
