package grouping

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Assign spreads attendees over the eight groups. Men and women are dealt
// round-robin independently, each starting at group 1, in the order given.
// Names in excluded (exact match) are left out; attendees whose gender is
// neither L nor P are not grouped.
func Assign(attendees []Attendee, excluded []string) []Group {
	skip := nameSet(excluded)

	groups := emptyGroups()
	var male, female int
	seen := make(map[int64]struct{}, len(attendees))
	for _, a := range attendees {
		if _, ok := skip[a.Name]; ok {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}

		switch a.Gender {
		case GenderMale:
			g := &groups[male%GroupCount]
			g.Male = append(g.Male, a)
			male++
		case GenderFemale:
			g := &groups[female%GroupCount]
			g.Female = append(g.Female, a)
			female++
		}
	}
	return groups
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// withoutExcluded drops attendees whose name is in excluded (exact match).
func withoutExcluded(attendees []Attendee, excluded []string) []Attendee {
	if len(excluded) == 0 {
		return attendees
	}
	skip := nameSet(excluded)
	out := make([]Attendee, 0, len(attendees))
	for _, a := range attendees {
		if _, ok := skip[a.Name]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// place builds groups from saved assignments. Attendees with no saved
// group come back as unassigned.
func place(attendees []Attendee, saved map[int64]int) ([]Group, []Attendee) {
	groups := emptyGroups()
	unassigned := []Attendee{}
	for _, a := range attendees {
		no, ok := saved[a.ID]
		if !ok || !validNo(no) {
			unassigned = append(unassigned, a)
			continue
		}
		g := &groups[no-1]
		if a.Gender == GenderMale {
			g.Male = append(g.Male, a)
		} else {
			g.Female = append(g.Female, a)
		}
	}
	return groups, unassigned
}

func sortByName(list []Attendee) {
	col := collate.New(language.Indonesian, collate.IgnoreCase, collate.Loose)
	sort.SliceStable(list, func(i, j int) bool {
		if c := col.CompareString(list[i].Name, list[j].Name); c != 0 {
			return c < 0
		}
		return list[i].ID < list[j].ID
	})
}
