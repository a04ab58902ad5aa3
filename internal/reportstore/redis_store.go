// Package reportstore persists reports in Redis, indexed by the digest of the
// snapshot payload they were produced from.
package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"continuitygraph/pkg/models"
)

// Defaults for the report store.
const (
	DefaultKeyPrefix = "continuity:reports"
	DefaultTTL       = 30 * 24 * time.Hour
)

// ErrNotFound is returned when no report exists for the lookup.
var ErrNotFound = errors.New("report not found")

// RedisConfig configures Redis access for report persistence.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisStore writes reports and serves digest lookups.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed report store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis report store: %w", err)
	}

	return newStore(client, cfg), nil
}

func newStore(client *redis.Client, cfg RedisConfig) *RedisStore {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// WriteReports stores each report body and points its snapshot digest at it.
func (s *RedisStore) WriteReports(reports []*models.Report) error {
	if len(reports) == 0 {
		return nil
	}
	ctx := context.Background()
	pipe := s.client.TxPipeline()

	queued := 0
	for _, r := range reports {
		if r == nil || r.ReportID == "" {
			continue
		}
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report %s: %w", r.ReportID, err)
		}
		pipe.Set(ctx, s.reportKey(r.ReportID), body, s.ttl)
		if r.SnapshotDigest != "" {
			pipe.Set(ctx, s.digestKey(r.SnapshotDigest), r.ReportID, s.ttl)
		}
		queued++
	}
	if queued == 0 {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write report keys: %w", err)
	}
	return nil
}

// ByDigest returns the report produced from a snapshot payload digest.
func (s *RedisStore) ByDigest(ctx context.Context, digest string) (*models.Report, error) {
	id, err := s.client.Get(ctx, s.digestKey(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read digest index: %w", err)
	}

	raw, err := s.client.Get(ctx, s.reportKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", id, err)
	}
	var r models.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &r, nil
}

// Close closes Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) reportKey(id string) string {
	return s.prefix + ":report:" + id
}

func (s *RedisStore) digestKey(digest string) string {
	return s.prefix + ":digest:" + digest
}
