package cache

import (
	"context"
	"sync"
	"time"
)

// MockRedisClient keeps markers in memory for tests.
type MockRedisClient struct {
	mu   sync.Mutex
	data map[string]time.Time // key -> expiry, zero for none
	now  func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{data: make(map[string]time.Time), now: time.Now}
}

func (m *MockRedisClient) Close() error {
	return nil
}

func (m *MockRedisClient) IsProcessed(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	expiry, exists := m.data[key]
	if !exists {
		return false, nil
	}
	if !expiry.IsZero() && !m.now().Before(expiry) {
		delete(m.data, key)
		return false, nil
	}
	return true, nil
}

func (m *MockRedisClient) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	var expiry time.Time
	if ttl > 0 {
		expiry = m.now().Add(ttl)
	}
	m.data[key] = expiry
	return nil
}
