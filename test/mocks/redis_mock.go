package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements the Set/SetXX/Get/Del/Ping subset of *redis.Client
// that the session store and health probe use.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue
	now  func() time.Time

	SetError  error
	GetError  error
	DelError  error
	PingError error
}

type mockRedisValue struct {
	value     string
	ttl       time.Duration
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]mockRedisValue),
		now:  time.Now,
	}
}

// Advance moves the mock clock forward so stored keys can expire.
func (m *MockRedisClient) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now()
	m.now = func() time.Time { return base.Add(d) }
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	v := mockRedisValue{value: value.(string), ttl: expiration}
	if expiration > 0 {
		v.expiresAt = m.now().Add(expiration)
	}
	m.data[key] = v

	cmd.SetVal("OK")
	return cmd
}

// SetXX only overwrites live keys. redis.KeepTTL keeps the current expiry.
func (m *MockRedisClient) SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewBoolCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	current, ok := m.live(key)
	if !ok {
		cmd.SetVal(false)
		return cmd
	}

	v := mockRedisValue{value: value.(string), ttl: current.ttl, expiresAt: current.expiresAt}
	if expiration > 0 {
		v.ttl = expiration
		v.expiresAt = m.now().Add(expiration)
	}
	m.data[key] = v

	cmd.SetVal(true)
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}

	v, ok := m.live(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// HasKey reports whether key is stored and not expired.
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.live(key)
	return ok
}

// TTLOf returns the expiration the key was last set with.
func (m *MockRedisClient) TTLOf(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key].ttl
}

func (m *MockRedisClient) live(key string) (mockRedisValue, bool) {
	v, ok := m.data[key]
	if !ok {
		return v, false
	}
	if !v.expiresAt.IsZero() && !m.now().Before(v.expiresAt) {
		return v, false
	}
	return v, true
}
