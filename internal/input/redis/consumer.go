// Package redis reads snapshot payloads from a Redis list used as a work queue.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Defaults for the snapshot queue.
const (
	DefaultAddr         = "127.0.0.1:6379"
	DefaultKey          = "continuity:snapshots"
	DefaultBlockTimeout = 5 * time.Second
)

// Config configures the Redis consumer.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	BlockTimeout time.Duration
}

// Consumer pops snapshot payloads from a Redis list.
type Consumer struct {
	client       *redis.Client
	key          string
	blockTimeout time.Duration
}

// NewConsumer creates a Redis consumer for list-based queues.
func NewConsumer(cfg Config) (*Consumer, error) {
	cfg = withDefaults(cfg)
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("redis key is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Consumer{
		client:       client,
		key:          cfg.Key,
		blockTimeout: cfg.BlockTimeout,
	}, nil
}

func withDefaults(cfg Config) Config {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	return cfg
}

// Key returns the list key the consumer reads.
func (c *Consumer) Key() string {
	return c.key
}

// Pop pops one payload from the list. It returns nil, nil when the block
// timeout elapses with nothing queued.
func (c *Consumer) Pop(ctx context.Context) ([]byte, error) {
	res, err := c.client.BLPop(ctx, c.blockTimeout, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop snapshot: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Push appends a payload to the tail of the list.
func (c *Consumer) Push(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("push snapshot: empty payload")
	}
	if err := c.client.RPush(ctx, c.key, payload).Err(); err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}
	return nil
}

// Depth returns the number of queued payloads.
func (c *Consumer) Depth(ctx context.Context) (int64, error) {
	n, err := c.client.LLen(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	return c.client.Close()
}
