package member

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type memRepo struct {
	members []Member
	nextID  int64
	deleted []int64
}

func (m *memRepo) List(context.Context) ([]Member, error) {
	out := make([]Member, 0, len(m.members))
	for i := len(m.members) - 1; i >= 0; i-- {
		out = append(out, m.members[i])
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*Member, error) {
	for _, x := range m.members {
		if x.ID == id {
			x := x
			return &x, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Insert(_ context.Context, x *Member) (int64, error) {
	m.nextID++
	x.ID = m.nextID
	m.members = append(m.members, *x)
	return x.ID, nil
}

func (m *memRepo) Update(_ context.Context, x *Member) (int64, error) {
	for i := range m.members {
		if m.members[i].ID == x.ID {
			m.members[i] = *x
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) (int64, error) {
	for i := range m.members {
		if m.members[i].ID == id {
			m.members = append(m.members[:i], m.members[i+1:]...)
			m.deleted = append(m.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}

func validRequest(name string) MemberRequest {
	return MemberRequest{Name: name, Gender: "L", Group: "Linggar", Status: "Pelajar", BirthDate: "01/03/2005"}
}

func TestCreateValidation(t *testing.T) {
	svc := NewServiceWith(&memRepo{}, &fakeClock{now: t0})
	ctx := context.Background()

	bad := []MemberRequest{
		{Gender: "L", Group: "Linggar", Status: "Pelajar"},
		{Name: "A", Gender: "X", Group: "Linggar", Status: "Pelajar"},
		{Name: "A", Gender: "L", Group: "Bandung", Status: "Pelajar"},
		{Name: "A", Gender: "L", Group: "Linggar", Status: "Pensiun"},
		{Name: "A", Gender: "L", Group: "Linggar", Status: "Pelajar", BirthDate: "31/02/2005"},
		{Name: "   ", Gender: "L", Group: "Linggar", Status: "Pelajar"},
	}
	for _, req := range bad {
		_, err := svc.Create(ctx, req)
		assert.Equal(t, 400, toHTTPStatus(err), "%+v", req)
	}

	req := validRequest("Ahmad")
	req.Status = "Mahasiswa & Kerja"
	req.Group = "Cikancung 2"
	res, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	require.NotNil(t, res.BirthDate)
	assert.Equal(t, "2005-03-01", *res.BirthDate)
	assert.Equal(t, t0, res.CreatedAt)

	req = validRequest("Budi")
	req.BirthDate = "dd/mm/yyyy"
	res, err = svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, res.BirthDate)
}

func TestListSearchAndPaging(t *testing.T) {
	svc := NewServiceWith(&memRepo{}, &fakeClock{now: t0})
	ctx := context.Background()
	for _, n := range []string{"Ahmad", "Budi", "Citra"} {
		_, err := svc.Create(ctx, validRequest(n))
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, "", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Citra", res.Items[0].Name, "newest first")

	res, err = svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Ahmad", res.Items[0].Name)

	res, _ = svc.List(ctx, "BUDI", 0, 0)
	assert.Equal(t, 1, res.Total)
	res, _ = svc.List(ctx, "01/03/2005", 0, 0)
	assert.Equal(t, 3, res.Total)
	res, _ = svc.List(ctx, "linggar", 0, 0)
	assert.Equal(t, 3, res.Total)
	res, _ = svc.List(ctx, "nobody", 0, 0)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Items)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := &memRepo{}
	svc := NewServiceWith(repo, &fakeClock{now: t0})
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest("Ahmad"))
	require.NoError(t, err)

	req := validRequest("Ahmad Fauzi")
	req.BirthDate = ""
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Ahmad Fauzi", updated.Name)
	assert.Nil(t, updated.BirthDate)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, 99, req)
	assert.Equal(t, 404, toHTTPStatus(err))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []int64{created.ID}, repo.deleted)
	assert.Equal(t, 404, toHTTPStatus(svc.Delete(ctx, created.ID)))

	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, 404, toHTTPStatus(err))
}
