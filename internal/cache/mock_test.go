package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestMockRedisClientExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m := NewMockRedisClient()
	m.now = func() time.Time { return now }

	assert.Equal(t, nil, m.MarkProcessed(ctx, "line:1", time.Hour))

	seen, err := m.IsProcessed(ctx, "line:1")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, seen)

	now = now.Add(2 * time.Hour)
	seen, _ = m.IsProcessed(ctx, "line:1")
	assert.Equal(t, false, seen)
}

func TestMockRedisClientErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMockRedisClient()
	m.MarkProcessed(ctx, "a", 0)

	seen, _ := m.IsProcessed(ctx, "a")
	assert.Equal(t, true, seen)

	m.Err = errors.New("connection refused")
	_, err := m.IsProcessed(ctx, "a")
	assert.NotEqual(t, nil, err)
}

var _ RedisInterface = (*RedisClient)(nil)
var _ RedisInterface = (*MockRedisClient)(nil)
