package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix selects environment overrides. Nested keys are separated by a
// double underscore, e.g. CONTINUITY_INPUT__REDIS__ADDR.
const EnvPrefix = "CONTINUITY_"

// Output sink names.
const (
	SinkFile       = "file"
	SinkHTTP       = "http"
	SinkRedis      = "redis"
	SinkClickHouse = "clickhouse"
)

// Config is the root configuration.
type Config struct {
	Continuity ContinuityConfig `yaml:"continuity"`
}

// ContinuityConfig is the project configuration.
type ContinuityConfig struct {
	Input    InputConfig    `yaml:"input"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Policy   PolicyConfig   `yaml:"policy"`
	Output   OutputConfig   `yaml:"output"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig controls the snapshot queue.
type InputConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis input.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// PipelineConfig controls pipeline behavior.
type PipelineConfig struct {
	Workers       int           `yaml:"workers"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	CacheSize     int           `yaml:"cache_size"`
}

// AnalysisConfig holds engine defaults; snapshots may override them.
type AnalysisConfig struct {
	ImpactThreshold     int `yaml:"impact_threshold"`
	SPOFDegreeThreshold int `yaml:"spof_degree_threshold"`
	SPOFTopN            int `yaml:"spof_top_n"`
	CriticalPathTopN    int `yaml:"critical_path_top_n"`
	MaxPathNodes        int `yaml:"max_path_nodes"`
	PriorityTopN        int `yaml:"priority_top_n"`
}

// PolicyConfig controls continuity policy rules.
type PolicyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig selects and configures report sinks.
type OutputConfig struct {
	Sinks      []string               `yaml:"sinks"`
	File       FileOutputConfig       `yaml:"file"`
	HTTP       HTTPOutputConfig       `yaml:"http"`
	Redis      RedisStoreConfig       `yaml:"redis"`
	ClickHouse ClickHouseOutputConfig `yaml:"clickhouse"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// RedisStoreConfig config for the Redis report store.
type RedisStoreConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
	// Lookup reuses stored reports for already-seen snapshot digests.
	Lookup bool `yaml:"lookup"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	URL      string            `yaml:"url"`
	Database string            `yaml:"database"`
	Table    string            `yaml:"table"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// AlertsConfig controls readiness alerting.
type AlertsConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Threshold int               `yaml:"threshold"`
	Cooldown  time.Duration     `yaml:"cooldown"`
	Output    AlertOutputConfig `yaml:"output"`
}

// AlertOutputConfig selects the alert sink.
type AlertOutputConfig struct {
	Mode string           `yaml:"mode"` // file|http
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
}

// MetricsConfig controls the metrics listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads a YAML config file, when path is set, and overlays
// CONTINUITY_ environment variables.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load config environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// envKey maps CONTINUITY_OUTPUT__HTTP__URL to continuity.output.http.url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return "continuity." + strings.ReplaceAll(key, "__", ".")
}

// HasSink reports whether name is among the configured report sinks.
func (o OutputConfig) HasSink(name string) bool {
	for _, s := range o.Sinks {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}
