package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"continuitygraph/config"
	"continuitygraph/internal/logger"
)

const defaultConfigName = "continuitygraph.yml"

func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		log.Printf("Warning: config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		return defaultConfigName
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), defaultConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// Environment variables alone may configure the service.
	return ""
}

func applyDefaults(cfg *config.Config) {
	c := &cfg.Continuity

	if c.Input.Redis.Addr == "" {
		c.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Input.Redis.Key == "" {
		c.Input.Redis.Key = "continuity:snapshots"
	}
	if c.Input.Redis.BlockTimeout <= 0 {
		c.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = 50
	}
	if c.Pipeline.FlushInterval <= 0 {
		c.Pipeline.FlushInterval = 2 * time.Second
	}
	if c.Pipeline.RetryDelay <= 0 {
		c.Pipeline.RetryDelay = time.Second
	}

	if len(c.Output.Sinks) == 0 {
		c.Output.Sinks = []string{config.SinkFile}
	}
	if c.Output.File.Path == "" {
		c.Output.File.Path = "output/reports.jsonl"
	}
	if c.Output.Redis.Addr == "" {
		c.Output.Redis.Addr = c.Input.Redis.Addr
	}
	if c.Output.ClickHouse.Database == "" {
		c.Output.ClickHouse.Database = "continuity"
	}

	if c.Alerts.Threshold <= 0 {
		c.Alerts.Threshold = 70
	}
	if c.Alerts.Cooldown <= 0 {
		c.Alerts.Cooldown = time.Hour
	}
	if c.Alerts.Output.Mode == "" {
		c.Alerts.Output.Mode = "file"
	}
	if c.Alerts.Output.File.Path == "" {
		c.Alerts.Output.File.Path = "output/alerts.jsonl"
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9464"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func loadConfig(configArg string) (*config.Config, string) {
	configPath := findConfigFile(configArg)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyDefaults(cfg)

	l := cfg.Continuity.Logging
	if err := logger.Init(l.Enabled, l.Level, l.File, l.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, configPath
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: continuitygraph <command> [flags]

commands:
  serve   [config]         consume snapshots from Redis and write reports
  analyze -input FILE      analyze one snapshot file
  enqueue -input FILE      push a snapshot file onto the Redis queue
`)
}

func main() {
	if len(os.Args) < 2 {
		runServe(nil)
		return
	}
	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "analyze":
		os.Exit(runAnalyze(os.Args[2:]))
	case "enqueue":
		os.Exit(runEnqueue(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
	default:
		// Backward-compatible mode: first arg is config path.
		runServe(os.Args[1:])
	}
}
