package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(Config{})
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultKey, cfg.Key)
	assert.Equal(t, DefaultBlockTimeout, cfg.BlockTimeout)

	cfg = withDefaults(Config{Addr: "redis:6379", Key: "q", BlockTimeout: time.Second})
	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.Equal(t, "q", cfg.Key)
	assert.Equal(t, time.Second, cfg.BlockTimeout)
}

func TestNewConsumerRejectsBlankKey(t *testing.T) {
	_, err := NewConsumer(Config{Key: "   "})
	require.Error(t, err)
}

// Requires a reachable Redis; set CONTINUITY_TEST_REDIS_ADDR to run.
func TestConsumerRoundTrip(t *testing.T) {
	addr := os.Getenv("CONTINUITY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONTINUITY_TEST_REDIS_ADDR not set")
	}
	c, err := NewConsumer(Config{Addr: addr, Key: "continuity:test:" + t.Name(), BlockTimeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Push(ctx, []byte(`{"organization_id":"acme"}`)))
	depth, err := c.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	payload, err := c.Pop(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"organization_id":"acme"}`, string(payload))

	payload, err = c.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, payload)
}
