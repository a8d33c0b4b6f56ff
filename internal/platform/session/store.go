// Package session holds the per-client key-value storage the auth gate
// reads from. One Store is the equivalent of one browser's local storage.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	KeyUserData  = "user_data"
	KeyLoginTime = "login_time"
)

var ErrUnavailable = errors.New("session storage unavailable")

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend hands out stores scoped to a single session id.
type Backend interface {
	Scope(sessionID string) Store
}

// NewID mints a session id.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ValidID reports whether s parses as a ULID.
func ValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// ===== in-memory =====

type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (b *MemoryBackend) Scope(sessionID string) Store {
	return &memoryStore{b: b, sid: sessionID}
}

// Len returns the number of keys held for sessionID.
func (b *MemoryBackend) Len(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data[sessionID])
}

type memoryStore struct {
	b   *MemoryBackend
	sid string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	v, ok := m.b.data[m.sid][key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	kv, ok := m.b.data[m.sid]
	if !ok {
		kv = make(map[string]string, 2)
		m.b.data[m.sid] = kv
	}
	kv[key] = value
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	delete(m.b.data[m.sid], key)
	if len(m.b.data[m.sid]) == 0 {
		delete(m.b.data, m.sid)
	}
	return nil
}
