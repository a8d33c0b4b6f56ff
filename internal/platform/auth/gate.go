package auth

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"GEMA-backend/internal/platform/session"
)

const (
	SessionDuration = 24 * time.Hour
	ExpiryWarning   = 5 * time.Minute
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleLimited Role = "limited"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleLimited }

type Action string

const (
	ActionAdd            Action = "add"
	ActionEdit           Action = "edit"
	ActionDelete         Action = "delete"
	ActionEditAttendance Action = "edit_attendance"
)

// Session is what gets serialized under the user_data key.
type Session struct {
	Username  string `json:"username"`
	LoginTime int64  `json:"loginTime"` // epoch ms
	Role      Role   `json:"role"`
}

func (s Session) LoggedInAt() time.Time { return time.UnixMilli(s.LoginTime).UTC() }

// SessionGate is the contract handlers depend on.
type SessionGate interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *Session
	Login(ctx context.Context, username string, role Role) error
	Logout(ctx context.Context)
	HasPermission(ctx context.Context, action Action) bool
	RemainingSessionTime(ctx context.Context) time.Duration
	IsSessionExpiringSoon(ctx context.Context) bool
}

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Gate decides authentication and authorization from session storage alone.
// A nil store behaves as unavailable storage: everything is denied.
type Gate struct {
	store    session.Store
	clock    Clock
	duration time.Duration
}

type GateOption func(*Gate)

func WithClock(c Clock) GateOption { return func(g *Gate) { g.clock = c } }

func WithDuration(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.duration = d
		}
	}
}

func NewGate(store session.Store, opts ...GateOption) *Gate {
	g := &Gate{store: store, clock: realClock{}, duration: SessionDuration}
	for _, o := range opts {
		o(g)
	}
	return g
}

// loginTime returns the stored login timestamp. ok is false when the key
// is absent or malformed; err is set only when storage could not be read.
func (g *Gate) loginTime(ctx context.Context) (ms int64, ok bool, err error) {
	raw, ok, err := g.store.Get(ctx, session.KeyLoginTime)
	if err != nil || !ok {
		return 0, false, err
	}
	ms, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		return 0, false, nil
	}
	return ms, true, nil
}

// IsAuthenticated fails closed. A read error denies without clearing the
// session; a missing, malformed or stale login_time logs out.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	if g.store == nil {
		return false
	}
	_, hasUser, err := g.store.Get(ctx, session.KeyUserData)
	if err != nil {
		log.Printf("[WARN] session read failed: %v", err)
		return false
	}
	loginMs, hasTime, err := g.loginTime(ctx)
	if err != nil {
		log.Printf("[WARN] session read failed: %v", err)
		return false
	}
	if !hasUser || !hasTime {
		if hasUser {
			// user_data without a usable login_time cannot be validated
			g.Logout(ctx)
		}
		return false
	}

	elapsed := g.clock.Now().Sub(time.UnixMilli(loginMs))
	if elapsed >= g.duration {
		g.Logout(ctx)
		return false
	}
	return true
}

func (g *Gate) CurrentUser(ctx context.Context) *Session {
	if !g.IsAuthenticated(ctx) {
		return nil
	}
	raw, ok, err := g.store.Get(ctx, session.KeyUserData)
	if err != nil || !ok {
		return nil
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.Username == "" || !s.Role.Valid() {
		log.Printf("[WARN] malformed session data, logging out")
		g.Logout(ctx)
		return nil
	}
	return &s
}

func (g *Gate) Login(ctx context.Context, username string, role Role) error {
	if g.store == nil {
		return session.ErrUnavailable
	}
	if role == "" {
		role = RoleAdmin
	}
	s := Session{
		Username:  username,
		LoginTime: g.clock.Now().UnixMilli(),
		Role:      role,
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, session.KeyUserData, string(buf)); err != nil {
		return err
	}
	if err := g.store.Set(ctx, session.KeyLoginTime, strconv.FormatInt(s.LoginTime, 10)); err != nil {
		g.Logout(ctx)
		return err
	}
	return nil
}

func (g *Gate) Logout(ctx context.Context) {
	if g.store == nil {
		return
	}
	if err := g.store.Remove(ctx, session.KeyUserData); err != nil {
		log.Printf("[WARN] session clear failed: %v", err)
	}
	if err := g.store.Remove(ctx, session.KeyLoginTime); err != nil {
		log.Printf("[WARN] session clear failed: %v", err)
	}
}

// RemainingSessionTime is 0 unless the session is authenticated.
func (g *Gate) RemainingSessionTime(ctx context.Context) time.Duration {
	if !g.IsAuthenticated(ctx) {
		return 0
	}
	loginMs, ok, err := g.loginTime(ctx)
	if err != nil || !ok {
		return 0
	}
	remaining := g.duration - g.clock.Now().Sub(time.UnixMilli(loginMs))
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *Gate) IsSessionExpiringSoon(ctx context.Context) bool {
	r := g.RemainingSessionTime(ctx)
	return r > 0 && r <= ExpiryWarning
}

// HasPermission: admins may do anything, limited users may only change
// attendance status.
func (g *Gate) HasPermission(ctx context.Context, action Action) bool {
	u := g.CurrentUser(ctx)
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleLimited:
		return action == ActionEditAttendance
	}
	return false
}
