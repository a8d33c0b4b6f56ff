package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"GEMA-backend/internal/platform/session"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrInvalidRole   = errors.New("role must be admin or limited")
	ErrInvalidInput  = errors.New("username and password are required")
)

// AuthService is what the handlers and RequireAuth depend on; *Service is
// the MySQL-backed implementation.
type AuthService interface {
	SessionFromToken(token string) (string, error)
	SessionDuration() time.Duration
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string)
	GateFor(sessionID string) *Gate
	Register(ctx context.Context, username, password string, role Role) error
	Delete(ctx context.Context, username string) error
	ChangeUsername(ctx context.Context, oldName, newName string) error
	ResetPassword(ctx context.Context, username, password string) error
}

type LoginResult struct {
	Token     string
	SessionID string
	Session   Session
	ExpiresAt time.Time
}

type Service struct {
	store    AccountStore
	sessions session.Backend
	secret   []byte
	duration time.Duration
	clock    Clock
	cost     int
}

type ServiceOption func(*Service)

func WithServiceClock(c Clock) ServiceOption { return func(s *Service) { s.clock = c } }

func WithSessionDuration(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.duration = d
		}
	}
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) ServiceOption { return func(s *Service) { s.cost = cost } }

func NewService(store AccountStore, sessions session.Backend, secret []byte, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		sessions: sessions,
		secret:   secret,
		duration: SessionDuration,
		clock:    realClock{},
		cost:     bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ AuthService = (*Service)(nil)

func (s *Service) Secret() []byte { return s.secret }

// SessionFromToken validates a bearer token and returns the session id it
// points at.
func (s *Service) SessionFromToken(token string) (string, error) {
	return parseSessionToken(token, s.secret, s.clock.Now)
}

func (s *Service) SessionDuration() time.Duration { return s.duration }

func (s *Service) GateFor(sessionID string) *Gate {
	return NewGate(s.sessions.Scope(sessionID), WithClock(s.clock), WithDuration(s.duration))
}

// Login checks the password against the bcrypt hash stored in `login`,
// opens a new session and signs a token pointing at it.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrAuthFailed
	}
	acct, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if acct == nil || acct.IsDisabled {
		return nil, ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}

	sid, err := session.NewID()
	if err != nil {
		return nil, err
	}
	role := acct.Role
	if !role.Valid() {
		role = RoleLimited
	}
	gate := s.GateFor(sid)
	if err := gate.Login(ctx, acct.Username, role); err != nil {
		return nil, err
	}
	cur := gate.CurrentUser(ctx)
	if cur == nil {
		return nil, session.ErrUnavailable
	}

	exp := cur.LoggedInAt().Add(s.duration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.Username,
		"sid":  sid,
		"role": string(role),
		"iat":  cur.LoggedInAt().Unix(),
		"exp":  exp.Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		gate.Logout(ctx)
		return nil, err
	}
	return &LoginResult{Token: tokenString, SessionID: sid, Session: *cur, ExpiresAt: exp}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.GateFor(sessionID).Logout(ctx)
}

func (s *Service) Register(ctx context.Context, username, password string, role Role) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	if role == "" {
		role = RoleAdmin
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	exists, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.store.Create(ctx, &Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
}

func (s *Service) Delete(ctx context.Context, username string) error {
	n, err := s.store.Delete(ctx, username)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ChangeUsername(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidInput
	}
	old, err := s.store.GetByUsername(ctx, oldName)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}

	nw, err := s.store.GetByUsername(ctx, newName)
	if err != nil {
		return err
	}
	if nw != nil {
		return ErrAlreadyExists
	}

	updated, err := s.store.UpdateUsername(ctx, oldName, newName)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	n, err := s.store.UpdatePasswordHash(ctx, username, string(hash))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
