package grouping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type memRepo struct {
	activities map[int64]bool
	hadir      []Attendee
	rows       []Row
	status     map[int64]string // member -> attendance status
	resetErr   error
}

func newMemRepo(hadir ...Attendee) *memRepo {
	st := make(map[int64]string, len(hadir))
	for _, a := range hadir {
		st[a.ID] = "Hadir"
	}
	return &memRepo{activities: map[int64]bool{42: true}, hadir: hadir, status: st}
}

func (m *memRepo) ActivityExists(_ context.Context, id int64) (bool, error) {
	return m.activities[id], nil
}

func (m *memRepo) Attendees(context.Context, int64) ([]Attendee, error) {
	var out []Attendee
	for _, a := range m.hadir {
		if m.status[a.ID] == "Hadir" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) SavedRows(context.Context, int64) ([]Row, error) {
	return append([]Row(nil), m.rows...), nil
}

func (m *memRepo) ReplaceRows(_ context.Context, _ int64, rows []Row) error {
	m.rows = append([]Row(nil), rows...)
	return nil
}

func (m *memRepo) DeleteRow(_ context.Context, _ int64, memberID int64) (int64, error) {
	for i, r := range m.rows {
		if r.MemberID == memberID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memRepo) ResetAttendance(_ context.Context, _ int64, memberID int64, _ time.Time) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.status[memberID] = "Belum"
	return nil
}

func sample() []Attendee {
	return []Attendee{
		{ID: 1, Name: "Ahmad", Gender: GenderMale, Group: "Linggar"},
		{ID: 2, Name: "Budi", Gender: GenderMale, Group: "Cikopo"},
		{ID: 3, Name: "Citra", Gender: GenderFemale, Group: "Cikopo"},
		{ID: 4, Name: "Dede", Gender: GenderMale, Group: "Linggar"},
	}
}

func TestCurrentDerivedThenSaved(t *testing.T) {
	repo := newMemRepo(sample()...)
	svc := NewServiceWith(repo, &fakeClock{now: t0}, []string{"Dede"})
	ctx := context.Background()

	_, err := svc.Current(ctx, 9)
	assert.Equal(t, 404, toHTTPStatus(err))

	v, err := svc.Current(ctx, 42)
	require.NoError(t, err)
	assert.False(t, v.Saved)
	assert.Equal(t, []int64{1}, ids(v.Groups[0].Male))
	assert.Equal(t, []int64{2}, ids(v.Groups[1].Male))
	assert.Equal(t, []int64{3}, ids(v.Groups[0].Female))
	assert.Len(t, v.Assignments(), 3, "Dede is excluded")

	v, err = svc.Save(ctx, 42, []Assignment{{MemberID: 1, No: 8}, {MemberID: 2, No: 8}})
	require.NoError(t, err)
	assert.True(t, v.Saved)
	assert.Equal(t, []int64{1, 2}, ids(v.Groups[7].Male))
	assert.Equal(t, []int64{3}, ids(v.Unassigned))
	require.Len(t, repo.rows, 2)
	assert.Equal(t, "Linggar", repo.rows[0].Kelompok)
}

func TestSaveValidation(t *testing.T) {
	svc := NewServiceWith(newMemRepo(sample()...), nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, 42, []Assignment{{MemberID: 1, No: 0}})
	assert.Equal(t, 400, toHTTPStatus(err))
	_, err = svc.Save(ctx, 42, []Assignment{{MemberID: 1, No: 9}})
	assert.Equal(t, 400, toHTTPStatus(err))
	_, err = svc.Save(ctx, 42, []Assignment{{MemberID: 1, No: 1}, {MemberID: 1, No: 2}})
	assert.Equal(t, 400, toHTTPStatus(err))
	_, err = svc.Save(ctx, 42, []Assignment{{MemberID: 77, No: 1}})
	assert.Equal(t, 400, toHTTPStatus(err))
}

func TestReassignMaterializesDerived(t *testing.T) {
	repo := newMemRepo(sample()...)
	svc := NewServiceWith(repo, nil, nil)
	ctx := context.Background()

	v, err := svc.Reassign(ctx, 42, 2, 5)
	require.NoError(t, err)
	assert.True(t, v.Saved)
	assert.Len(t, repo.rows, 4)
	assert.Equal(t, []int64{2}, ids(v.Groups[4].Male))
	assert.Equal(t, []int64{1}, ids(v.Groups[0].Male))

	_, err = svc.Reassign(ctx, 42, 99, 1)
	assert.Equal(t, 404, toHTTPStatus(err))
	_, err = svc.Reassign(ctx, 42, 2, 12)
	assert.Equal(t, 400, toHTTPStatus(err))
}

func TestRemoveResetsAttendance(t *testing.T) {
	repo := newMemRepo(sample()...)
	svc := NewServiceWith(repo, &fakeClock{now: t0}, nil)
	ctx := context.Background()

	_, err := svc.Reassign(ctx, 42, 3, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, 42, 3))
	assert.Equal(t, "Belum", repo.status[3])
	assert.Len(t, repo.rows, 3)

	v, err := svc.Current(ctx, 42)
	require.NoError(t, err)
	for _, g := range v.Groups {
		assert.NotContains(t, ids(g.Female), int64(3))
	}

	repo.resetErr = errors.New("boom")
	assert.Error(t, svc.Remove(ctx, 42, 1))
	assert.Len(t, repo.rows, 3, "row kept when the reset fails")
}

func TestExcludedNamesStayOutOfSavedGroupings(t *testing.T) {
	repo := newMemRepo(sample()...)
	svc := NewServiceWith(repo, nil, []string{"Budi"})
	ctx := context.Background()

	v, err := svc.Current(ctx, 42)
	require.NoError(t, err)
	v, err = svc.Save(ctx, 42, v.Assignments())
	require.NoError(t, err)
	require.True(t, v.Saved)
	assert.Empty(t, v.Unassigned)
	for _, g := range v.Groups {
		assert.NotContains(t, ids(g.Male), int64(2))
	}

	_, err = svc.Reassign(ctx, 42, 2, 3)
	assert.Equal(t, 404, toHTTPStatus(err))

	_, err = svc.Save(ctx, 42, append(v.Assignments(), Assignment{MemberID: 2, No: 3}))
	assert.Equal(t, 400, toHTTPStatus(err))
	for _, r := range repo.rows {
		assert.NotEqual(t, int64(2), r.MemberID)
	}
}
