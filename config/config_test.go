package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `continuity:
  input:
    redis:
      addr: redis:6379
      key: continuity:snapshots
      block_timeout: 3s
  pipeline:
    workers: 2
    flush_interval: 500ms
  analysis:
    impact_threshold: 4
    max_path_nodes: 200
  policy:
    enabled: true
    path: rules/
  output:
    sinks: [file, clickhouse]
    file:
      path: out/reports.jsonl
    clickhouse:
      url: http://clickhouse:8123
      table: gaps
  alerts:
    enabled: true
    threshold: 75
    cooldown: 30m
    output:
      mode: http
      http:
        url: http://hooks/continuity
  metrics:
    enabled: true
    addr: ":9464"
  logging:
    enabled: true
    level: debug
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "continuity.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)

	c := cfg.Continuity
	assert.Equal(t, "redis:6379", c.Input.Redis.Addr)
	assert.Equal(t, 3*time.Second, c.Input.Redis.BlockTimeout)
	assert.Equal(t, 2, c.Pipeline.Workers)
	assert.Equal(t, 500*time.Millisecond, c.Pipeline.FlushInterval)
	assert.Equal(t, 4, c.Analysis.ImpactThreshold)
	assert.Equal(t, 200, c.Analysis.MaxPathNodes)
	assert.True(t, c.Policy.Enabled)
	assert.Equal(t, []string{"file", "clickhouse"}, c.Output.Sinks)
	assert.True(t, c.Output.HasSink(SinkClickHouse))
	assert.False(t, c.Output.HasSink(SinkRedis))
	assert.Equal(t, "gaps", c.Output.ClickHouse.Table)
	assert.Equal(t, 30*time.Minute, c.Alerts.Cooldown)
	assert.Equal(t, "http://hooks/continuity", c.Alerts.Output.HTTP.URL)
	assert.Equal(t, ":9464", c.Metrics.Addr)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CONTINUITY_INPUT__REDIS__ADDR", "10.0.0.5:6379")
	t.Setenv("CONTINUITY_PIPELINE__WORKERS", "16")
	t.Setenv("CONTINUITY_ALERTS__THRESHOLD", "60")

	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:6379", cfg.Continuity.Input.Redis.Addr)
	assert.Equal(t, 16, cfg.Continuity.Pipeline.Workers)
	assert.Equal(t, 60, cfg.Continuity.Alerts.Threshold)
	assert.Equal(t, "continuity:snapshots", cfg.Continuity.Input.Redis.Key)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("CONTINUITY_OUTPUT__FILE__PATH", "/tmp/reports.jsonl")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports.jsonl", cfg.Continuity.Output.File.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "continuity.input.redis.block_timeout", envKey("CONTINUITY_INPUT__REDIS__BLOCK_TIMEOUT"))
}
