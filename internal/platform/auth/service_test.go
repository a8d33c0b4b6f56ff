package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"GEMA-backend/internal/platform/session"
)

// memAccounts is an in-memory AccountStore.
type memAccounts struct {
	mu   sync.Mutex
	rows map[string]Account
}

func newMemAccounts() *memAccounts { return &memAccounts{rows: map[string]Account{}} }

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[username]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memAccounts) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.Username] = *a
	return nil
}

func (m *memAccounts) Delete(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[username]; !ok {
		return 0, nil
	}
	delete(m.rows, username)
	return 1, nil
}

func (m *memAccounts) UpdateUsername(_ context.Context, oldName, newName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[oldName]
	if !ok {
		return 0, nil
	}
	delete(m.rows, oldName)
	a.Username = newName
	m.rows[newName] = a
	return 1, nil
}

func (m *memAccounts) UpdatePasswordHash(_ context.Context, username, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[username]
	if !ok {
		return 0, nil
	}
	a.PasswordHash = hash
	m.rows[username] = a
	return 1, nil
}

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) (*Service, *memAccounts, *session.MemoryBackend, *fakeClock) {
	t.Helper()
	accts := newMemAccounts()
	sessions := session.NewMemoryBackend()
	clk := &fakeClock{now: t0}
	svc := NewService(accts, sessions, testSecret, WithServiceClock(clk), WithBcryptCost(bcrypt.MinCost))
	return svc, accts, sessions, clk
}

func TestServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, clk := newTestService(t)
	require.NoError(t, svc.Register(ctx, "rayza", "s3cret", RoleLimited))

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "rayza", "nope")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "s3cret")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	res, err := svc.Login(ctx, "rayza", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "rayza", res.Session.Username)
	assert.Equal(t, RoleLimited, res.Session.Role)
	assert.Equal(t, t0.Add(24*time.Hour), res.ExpiresAt)
	assert.Equal(t, 2, sessions.Len(res.SessionID))

	sid, err := parseSessionToken(res.Token, testSecret, clk.Now)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, sid)

	g := svc.GateFor(sid)
	u := g.CurrentUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "rayza", u.Username)

	// a day later the stored session is stale even though we never logged out
	clk.now = t0.Add(25 * time.Hour)
	assert.False(t, svc.GateFor(sid).IsAuthenticated(ctx))
	assert.Equal(t, 0, sessions.Len(sid))
}

func TestServiceLoginDisabledAccount(t *testing.T) {
	ctx := context.Background()
	svc, accts, _, _ := newTestService(t)
	require.NoError(t, svc.Register(ctx, "old", "pw", RoleAdmin))
	a := accts.rows["old"]
	a.IsDisabled = true
	accts.rows["old"] = a

	_, err := svc.Login(ctx, "old", "pw")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestServiceLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTestService(t)
	require.NoError(t, svc.Register(ctx, "a", "pw", ""))
	res, err := svc.Login(ctx, "a", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, res.Session.Role)

	svc.Logout(ctx, res.SessionID)
	svc.Logout(ctx, res.SessionID)
	assert.Equal(t, 0, sessions.Len(res.SessionID))
	assert.False(t, svc.GateFor(res.SessionID).IsAuthenticated(ctx))
}

func TestServiceRegisterStoresHash(t *testing.T) {
	ctx := context.Background()
	svc, accts, _, _ := newTestService(t)

	require.NoError(t, svc.Register(ctx, "x", "plain", RoleAdmin))
	assert.NotEqual(t, "plain", accts.rows["x"].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accts.rows["x"].PasswordHash), []byte("plain")))

	assert.ErrorIs(t, svc.Register(ctx, "x", "other", RoleAdmin), ErrAlreadyExists)
	assert.ErrorIs(t, svc.Register(ctx, "y", "pw", Role("root")), ErrInvalidRole)
	assert.ErrorIs(t, svc.Register(ctx, " ", "pw", RoleAdmin), ErrInvalidInput)
}

func TestServiceAccountAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)
	require.NoError(t, svc.Register(ctx, "a", "pw", RoleAdmin))
	require.NoError(t, svc.Register(ctx, "b", "pw", RoleAdmin))

	assert.ErrorIs(t, svc.ChangeUsername(ctx, "a", "b"), ErrAlreadyExists)
	assert.ErrorIs(t, svc.ChangeUsername(ctx, "zz", "c"), ErrNotFound)
	require.NoError(t, svc.ChangeUsername(ctx, "a", "c"))

	require.NoError(t, svc.ResetPassword(ctx, "c", "new"))
	_, err := svc.Login(ctx, "c", "pw")
	assert.ErrorIs(t, err, ErrAuthFailed)
	_, err = svc.Login(ctx, "c", "new")
	assert.NoError(t, err)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "nobody", "x"), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "c"))
	assert.ErrorIs(t, svc.Delete(ctx, "c"), ErrNotFound)
}

func TestParseSessionTokenRejectsForeignTokens(t *testing.T) {
	sid, err := session.NewID()
	require.NoError(t, err)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": sid, "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := other.SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = parseSessionToken(signed, testSecret, time.Now)
	assert.Error(t, err)

	noSid := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err = noSid.SignedString(testSecret)
	require.NoError(t, err)
	_, err = parseSessionToken(signed, testSecret, time.Now)
	assert.Error(t, err)
}
