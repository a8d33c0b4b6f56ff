package report

import (
	"sort"

	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/member"
)

// CountRow is one GROUP BY bucket of data_generus.
type CountRow struct {
	Gender string
	Group  string
	Status string
	N      int
}

type Count struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

// Summary backs the dashboard cards.
type Summary struct {
	Members    int     `json:"jumlah"`
	Male       int     `json:"laki_laki"`
	Female     int     `json:"perempuan"`
	ByGroup    []Count `json:"kelompok"`
	ByStatus   []Count `json:"status"`
	Activities int     `json:"kegiatan"`
}

// Summarize folds the buckets into totals. Groups and statuses come out in
// form order, known ones first even at zero, unknown ones after them A-Z.
func Summarize(rows []CountRow, activities int) Summary {
	s := Summary{Activities: activities}
	byGroup := map[string]int{}
	byStatus := map[string]int{}
	for _, r := range rows {
		s.Members += r.N
		switch r.Gender {
		case "L":
			s.Male += r.N
		case "P":
			s.Female += r.N
		}
		byGroup[r.Group] += r.N
		byStatus[r.Status] += r.N
	}
	s.ByGroup = ordered(byGroup, attendance.Groups)
	s.ByStatus = ordered(byStatus, member.Statuses)
	return s
}

func ordered(counts map[string]int, known []string) []Count {
	out := make([]Count, 0, len(counts)+len(known))
	seen := make(map[string]struct{}, len(known))
	for _, k := range known {
		seen[k] = struct{}{}
		out = append(out, Count{Label: k, Total: counts[k]})
	}
	var extra []string
	for k := range counts {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Count{Label: k, Total: counts[k]})
	}
	return out
}
