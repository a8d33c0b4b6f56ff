package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GEMA-backend/internal/platform/session"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestGate(t *testing.T) (*Gate, *fakeClock, *session.MemoryBackend) {
	t.Helper()
	b := session.NewMemoryBackend()
	clk := &fakeClock{now: t0}
	return NewGate(b.Scope("s1"), WithClock(clk)), clk, b
}

func TestGateSessionBoundary(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "just logged in", elapsed: 0, want: true},
		{name: "23h59m59s", elapsed: 24*time.Hour - time.Second, want: true},
		{name: "24h00m00s", elapsed: 24 * time.Hour, want: false},
		{name: "25h", elapsed: 25 * time.Hour, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, clk, b := newTestGate(t)
			require.NoError(t, g.Login(ctx, "rayza", RoleAdmin))

			clk.now = t0.Add(tt.elapsed)
			assert.Equal(t, tt.want, g.IsAuthenticated(ctx))
			if !tt.want {
				assert.Equal(t, 0, b.Len("s1"), "expired session must be purged")
			}
		})
	}
}

func TestGateLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g, _, b := newTestGate(t)

	g.Logout(ctx)
	assert.False(t, g.IsAuthenticated(ctx))

	require.NoError(t, g.Login(ctx, "bilal", RoleLimited))
	assert.True(t, g.IsAuthenticated(ctx))
	g.Logout(ctx)
	g.Logout(ctx)
	assert.False(t, g.IsAuthenticated(ctx))
	assert.Nil(t, g.CurrentUser(ctx))
	assert.Equal(t, 0, b.Len("s1"))
}

func TestGateCurrentUser(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newTestGate(t)

	assert.Nil(t, g.CurrentUser(ctx))

	require.NoError(t, g.Login(ctx, "hilman", ""))
	u := g.CurrentUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "hilman", u.Username)
	assert.Equal(t, RoleAdmin, u.Role, "role defaults to admin")
	assert.Equal(t, t0.UnixMilli(), u.LoginTime)
}

func TestGateMalformedSessionFailsClosed(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"bad json":     `{"username":`,
		"no username":  `{"username":"","loginTime":1,"role":"admin"}`,
		"unknown role": `{"username":"x","loginTime":1,"role":"root"}`,
		"missing role": `{"username":"x","loginTime":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			b := session.NewMemoryBackend()
			st := b.Scope("s1")
			require.NoError(t, st.Set(ctx, session.KeyUserData, raw))
			require.NoError(t, st.Set(ctx, session.KeyLoginTime, strconv.FormatInt(t0.UnixMilli(), 10)))

			g := NewGate(st, WithClock(&fakeClock{now: t0.Add(time.Minute)}))
			assert.Nil(t, g.CurrentUser(ctx))
			assert.False(t, g.HasPermission(ctx, ActionEditAttendance))
			assert.Equal(t, 0, b.Len("s1"))
		})
	}
}

func TestGateBadLoginTime(t *testing.T) {
	ctx := context.Background()
	b := session.NewMemoryBackend()
	st := b.Scope("s1")
	require.NoError(t, st.Set(ctx, session.KeyUserData, `{"username":"x","loginTime":1,"role":"admin"}`))
	require.NoError(t, st.Set(ctx, session.KeyLoginTime, "yesterday"))

	g := NewGate(st)
	assert.False(t, g.IsAuthenticated(ctx))
	assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
	assert.Equal(t, 0, b.Len("s1"))
}

func TestGatePermissions(t *testing.T) {
	ctx := context.Background()
	actions := []Action{ActionAdd, ActionEdit, ActionDelete, ActionEditAttendance}

	t.Run("no session", func(t *testing.T) {
		g, _, _ := newTestGate(t)
		for _, a := range actions {
			assert.False(t, g.HasPermission(ctx, a), a)
		}
	})
	t.Run("admin", func(t *testing.T) {
		g, _, _ := newTestGate(t)
		require.NoError(t, g.Login(ctx, "admin", RoleAdmin))
		for _, a := range actions {
			assert.True(t, g.HasPermission(ctx, a), a)
		}
	})
	t.Run("limited", func(t *testing.T) {
		g, _, _ := newTestGate(t)
		require.NoError(t, g.Login(ctx, "pengurus", RoleLimited))
		assert.False(t, g.HasPermission(ctx, ActionAdd))
		assert.False(t, g.HasPermission(ctx, ActionEdit))
		assert.False(t, g.HasPermission(ctx, ActionDelete))
		assert.True(t, g.HasPermission(ctx, ActionEditAttendance))
	})
	t.Run("expired admin", func(t *testing.T) {
		g, clk, _ := newTestGate(t)
		require.NoError(t, g.Login(ctx, "admin", RoleAdmin))
		clk.now = t0.Add(24 * time.Hour)
		for _, a := range actions {
			assert.False(t, g.HasPermission(ctx, a), a)
		}
	})
}

func TestGateRemainingAndExpiringSoon(t *testing.T) {
	ctx := context.Background()
	g, clk, _ := newTestGate(t)

	assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
	assert.False(t, g.IsSessionExpiringSoon(ctx))

	require.NoError(t, g.Login(ctx, "admin", RoleAdmin))
	assert.Equal(t, 24*time.Hour, g.RemainingSessionTime(ctx))
	assert.False(t, g.IsSessionExpiringSoon(ctx))

	clk.now = t0.Add(24*time.Hour - 5*time.Minute)
	assert.Equal(t, 5*time.Minute, g.RemainingSessionTime(ctx))
	assert.True(t, g.IsSessionExpiringSoon(ctx))

	clk.now = t0.Add(24*time.Hour - 5*time.Minute - time.Second)
	assert.False(t, g.IsSessionExpiringSoon(ctx))

	clk.now = t0.Add(30 * time.Hour)
	assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
	assert.False(t, g.IsSessionExpiringSoon(ctx))
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("disk gone") }
func (brokenStore) Remove(context.Context, string) error      { return errors.New("disk gone") }

func TestGateUnavailableStorage(t *testing.T) {
	ctx := context.Background()

	for name, g := range map[string]*Gate{"nil store": NewGate(nil), "failing store": NewGate(brokenStore{})} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, g.IsAuthenticated(ctx))
				assert.Nil(t, g.CurrentUser(ctx))
				assert.False(t, g.HasPermission(ctx, ActionAdd))
				assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
				g.Logout(ctx)
			})
			assert.Error(t, g.Login(ctx, "x", RoleAdmin))
		})
	}
}

func TestGateCustomDuration(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: t0}
	g := NewGate(session.NewMemoryBackend().Scope("s"), WithClock(clk), WithDuration(time.Hour))
	require.NoError(t, g.Login(ctx, "x", RoleAdmin))

	clk.now = t0.Add(59 * time.Minute)
	assert.True(t, g.IsAuthenticated(ctx))
	clk.now = t0.Add(time.Hour)
	assert.False(t, g.IsAuthenticated(ctx))
}

func TestGateHalfWrittenSessionHasNoTimeLeft(t *testing.T) {
	ctx := context.Background()
	b := session.NewMemoryBackend()
	st := b.Scope("s1")
	loginAt := t0.Add(-24*time.Hour + 2*time.Minute)
	require.NoError(t, st.Set(ctx, session.KeyLoginTime, strconv.FormatInt(loginAt.UnixMilli(), 10)))

	g := NewGate(st, WithClock(&fakeClock{now: t0}))
	assert.False(t, g.IsAuthenticated(ctx))
	assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
	assert.False(t, g.IsSessionExpiringSoon(ctx))
}

// flakyStore fails reads of one key while failing is set.
type flakyStore struct {
	session.Store
	key     string
	failing bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failing && key == f.key {
		return "", false, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

func TestGateReadErrorKeepsSession(t *testing.T) {
	ctx := context.Background()
	b := session.NewMemoryBackend()
	st := &flakyStore{Store: b.Scope("s1"), key: session.KeyLoginTime}
	g := NewGate(st, WithClock(&fakeClock{now: t0}))
	require.NoError(t, g.Login(ctx, "admin", RoleAdmin))

	st.failing = true
	assert.False(t, g.IsAuthenticated(ctx))
	assert.Equal(t, time.Duration(0), g.RemainingSessionTime(ctx))
	assert.Equal(t, 2, b.Len("s1"), "a failed read must not clear the session")

	st.failing = false
	assert.True(t, g.IsAuthenticated(ctx))
	assert.Equal(t, 24*time.Hour, g.RemainingSessionTime(ctx))
}
