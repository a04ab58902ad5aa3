package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"continuitygraph/config"
	"continuitygraph/internal/alerts"
	"continuitygraph/internal/engine"
	inputredis "continuitygraph/internal/input/redis"
	"continuitygraph/internal/logger"
	"continuitygraph/internal/output/alerthttp"
	"continuitygraph/internal/output/alertjson"
	"continuitygraph/internal/output/gapclickhouse"
	"continuitygraph/internal/output/reporthttp"
	"continuitygraph/internal/output/reportjson"
	"continuitygraph/internal/pipeline"
	"continuitygraph/internal/reportstore"
)

func runServe(args []string) {
	configArg := ""
	if len(args) > 0 {
		configArg = args[0]
	}
	cfg, configPath := loadConfig(configArg)
	defer logger.Close()
	c := cfg.Continuity

	logger.Infof("ContinuityGraph starting")
	if configPath != "" {
		logger.Infof("Config loaded from: %s", configPath)
	}

	consumer, err := inputredis.NewConsumer(inputredis.Config{
		Addr:         c.Input.Redis.Addr,
		Password:     c.Input.Redis.Password,
		DB:           c.Input.Redis.DB,
		Key:          c.Input.Redis.Key,
		BlockTimeout: c.Input.Redis.BlockTimeout,
	})
	if err != nil {
		logger.Errorf("Failed to create Redis consumer: %v", err)
		log.Fatalf("Failed to create Redis consumer: %v", err)
	}

	var rulesPath string
	if c.Policy.Enabled {
		rulesPath = c.Policy.Path
		if rulesPath == "" {
			logger.Warnf("Policy enabled but policy.path is empty; policy findings disabled")
		}
	}
	rules, err := loadPolicy(rulesPath)
	if err != nil {
		logger.Errorf("Failed to load policy rules from %s: %v", rulesPath, err)
		log.Fatalf("Failed to load policy rules: %v", err)
	}
	eng := engine.New(engineOptions(c.Analysis), rules)

	writers, store := buildReportWriters(c.Output)

	var alerter *alerts.Alerter
	var alertWriter pipeline.AlertWriter
	if c.Alerts.Enabled {
		alerter = alerts.NewAlerter(alerts.Config{
			Threshold: c.Alerts.Threshold,
			Cooldown:  c.Alerts.Cooldown,
		})
		alertWriter = buildAlertWriter(c.Alerts.Output)
	}

	pipe, err := pipeline.New(consumer, eng, writers, alerter, alertWriter, pipeline.Config{
		Workers:       c.Pipeline.Workers,
		BatchSize:     c.Pipeline.BatchSize,
		FlushInterval: c.Pipeline.FlushInterval,
		RetryDelay:    c.Pipeline.RetryDelay,
		CacheSize:     c.Pipeline.CacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	if store != nil && c.Output.Redis.Lookup {
		pipe.SetLookup(store)
		logger.Infof("Report lookup by snapshot digest enabled")
	}

	var metricsSrv *metricsServer
	if c.Metrics.Enabled {
		metricsSrv = newMetricsServer(c.Metrics, consumer)
		metricsSrv.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := pipe.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")
	<-done

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Error stopping metrics server: %v", err)
		}
		cancel()
	}
	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}

	logger.Infof("ContinuityGraph stopped")
}

// buildReportWriters opens every configured report sink. The Redis store is
// also returned so it can serve digest lookups.
func buildReportWriters(out config.OutputConfig) ([]pipeline.NamedReportWriter, *reportstore.RedisStore) {
	var writers []pipeline.NamedReportWriter
	var store *reportstore.RedisStore

	for _, name := range out.Sinks {
		switch name {
		case config.SinkFile:
			w, err := reportjson.NewWriter(out.File.Path)
			if err != nil {
				log.Fatalf("Failed to create report file writer: %v", err)
			}
			writers = append(writers, pipeline.NamedReportWriter{Name: name, Writer: w})
			logger.Infof("Report sink: file (%s)", out.File.Path)
		case config.SinkHTTP:
			w, err := reporthttp.NewWriter(reporthttp.Config{
				URL:     out.HTTP.URL,
				Timeout: out.HTTP.Timeout,
				Headers: out.HTTP.Headers,
			})
			if err != nil {
				log.Fatalf("Failed to create report HTTP writer: %v", err)
			}
			writers = append(writers, pipeline.NamedReportWriter{Name: name, Writer: w})
			logger.Infof("Report sink: http (%s)", out.HTTP.URL)
		case config.SinkRedis:
			s, err := reportstore.NewRedisStore(reportstore.RedisConfig{
				Addr:      out.Redis.Addr,
				Password:  out.Redis.Password,
				DB:        out.Redis.DB,
				KeyPrefix: out.Redis.KeyPrefix,
				TTL:       out.Redis.TTL,
			})
			if err != nil {
				log.Fatalf("Failed to create Redis report store: %v", err)
			}
			store = s
			writers = append(writers, pipeline.NamedReportWriter{Name: name, Writer: s})
			logger.Infof("Report sink: redis (%s)", out.Redis.Addr)
		case config.SinkClickHouse:
			ch := out.ClickHouse
			w, err := gapclickhouse.NewWriter(gapclickhouse.Config{
				URL:      ch.URL,
				Database: ch.Database,
				Table:    ch.Table,
				Username: ch.Username,
				Password: ch.Password,
				Timeout:  ch.Timeout,
				Headers:  ch.Headers,
			})
			if err != nil {
				log.Fatalf("Failed to create ClickHouse gap writer: %v", err)
			}
			writers = append(writers, pipeline.NamedReportWriter{Name: name, Writer: w})
			logger.Infof("Report sink: clickhouse (%s/%s)", ch.URL, ch.Database)
		default:
			log.Fatalf("Unknown report sink: %s", name)
		}
	}
	return writers, store
}

func buildAlertWriter(out config.AlertOutputConfig) pipeline.AlertWriter {
	switch out.Mode {
	case "file":
		w, err := alertjson.NewWriter(out.File.Path)
		if err != nil {
			log.Fatalf("Failed to create alert file writer: %v", err)
		}
		logger.Infof("Alert output mode: file (%s)", out.File.Path)
		return w
	case "http":
		w, err := alerthttp.NewWriter(alerthttp.Config{
			URL:     out.HTTP.URL,
			Timeout: out.HTTP.Timeout,
			Headers: out.HTTP.Headers,
		})
		if err != nil {
			log.Fatalf("Failed to create alert HTTP writer: %v", err)
		}
		logger.Infof("Alert output mode: http (%s)", out.HTTP.URL)
		return w
	default:
		log.Fatalf("Unknown alert output mode: %s", out.Mode)
		return nil
	}
}
