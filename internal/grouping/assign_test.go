package grouping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people(gender string, startID int64, n int) []Attendee {
	out := make([]Attendee, n)
	for i := range out {
		id := startID + int64(i)
		out[i] = Attendee{ID: id, Name: fmt.Sprintf("%s%02d", gender, id), Gender: gender, Group: "Linggar"}
	}
	return out
}

func ids(list []Attendee) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestAssignRoundRobinBySex(t *testing.T) {
	men := people(GenderMale, 1, 10)
	women := people(GenderFemale, 101, 3)
	// interleave to show the two counters are independent
	in := append([]Attendee{women[0]}, men[:5]...)
	in = append(in, women[1:]...)
	in = append(in, men[5:]...)

	groups := Assign(in, nil)
	require.Len(t, groups, GroupCount)
	for i, g := range groups {
		assert.Equal(t, i+1, g.No)
	}

	assert.Equal(t, []int64{1, 9}, ids(groups[0].Male))
	assert.Equal(t, []int64{2, 10}, ids(groups[1].Male))
	assert.Equal(t, []int64{3}, ids(groups[2].Male))
	assert.Equal(t, []int64{8}, ids(groups[7].Male))

	assert.Equal(t, []int64{101}, ids(groups[0].Female))
	assert.Equal(t, []int64{102}, ids(groups[1].Female))
	assert.Equal(t, []int64{103}, ids(groups[2].Female))
	assert.Empty(t, groups[3].Female)
}

func TestAssignExclusionIsExactName(t *testing.T) {
	in := []Attendee{
		{ID: 1, Name: "Dede", Gender: GenderMale},
		{ID: 2, Name: "dede", Gender: GenderMale},
		{ID: 3, Name: "Rina", Gender: GenderFemale},
		{ID: 4, Name: "Tanpa", Gender: "X"},
	}
	groups := Assign(in, []string{"Dede", "Rina"})

	assert.Equal(t, []int64{2}, ids(groups[0].Male), "exclusion is case sensitive")
	for _, g := range groups {
		assert.Empty(t, g.Female)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Male) + len(g.Female)
	}
	assert.Equal(t, 1, total)
}

func TestAssignEmpty(t *testing.T) {
	groups := Assign(nil, nil)
	require.Len(t, groups, GroupCount)
	for _, g := range groups {
		assert.NotNil(t, g.Male)
		assert.Empty(t, g.Male)
	}
}

func TestPlaceSaved(t *testing.T) {
	in := []Attendee{
		{ID: 1, Name: "A", Gender: GenderMale},
		{ID: 2, Name: "B", Gender: GenderFemale},
		{ID: 3, Name: "C", Gender: GenderMale},
	}
	groups, unassigned := place(in, map[int64]int{1: 5, 2: 5})
	assert.Equal(t, []int64{1}, ids(groups[4].Male))
	assert.Equal(t, []int64{2}, ids(groups[4].Female))
	assert.Equal(t, []int64{3}, ids(unassigned))
}
