// Package pipeline runs queued snapshots through the analysis engine and
// flushes the reports to the configured sinks.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"continuitygraph/internal/alerts"
	"continuitygraph/internal/logger"
	"continuitygraph/internal/metrics"
	"continuitygraph/internal/transform/snapshot"
	"continuitygraph/pkg/models"
)

// Defaults for pipeline tuning.
const (
	DefaultWorkers       = 4
	DefaultBatchSize     = 50
	DefaultFlushInterval = 2 * time.Second
	DefaultRetryDelay    = time.Second
	DefaultCacheSize     = 256
	popErrorDelay        = 500 * time.Millisecond
)

// Config controls worker count, batching and caching.
type Config struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	RetryDelay    time.Duration
	// CacheSize bounds the digest -> report cache; negative disables it.
	CacheSize int
}

// Pipeline consumes snapshot payloads and writes reports and alerts.
type Pipeline struct {
	source      Source
	analyzer    Analyzer
	writers     []NamedReportWriter
	alerter     *alerts.Alerter
	alertWriter AlertWriter
	cache       *lru.Cache[string, *models.Report]
	lookup      ReportLookup
	cfg         Config
}

type workItem struct {
	report *models.Report
	alert  *models.Alert
}

// New creates a pipeline. alerter and alertWriter may be nil.
func New(source Source, analyzer Analyzer, writers []NamedReportWriter, alerter *alerts.Alerter, alertWriter AlertWriter, cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	p := &Pipeline{
		source:      source,
		analyzer:    analyzer,
		writers:     writers,
		alerter:     alerter,
		alertWriter: alertWriter,
		cfg:         cfg,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, *models.Report](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create report cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// SetLookup installs a persistent report lookup used on cache misses.
func (p *Pipeline) SetLookup(lookup ReportLookup) {
	p.lookup = lookup
}

// Run starts the pipeline loop and blocks until ctx is done and every
// in-flight report has been flushed.
func (p *Pipeline) Run(ctx context.Context) error {
	logger.Infof("Snapshot pipeline started (workers=%d, batch=%d)", p.cfg.Workers, p.cfg.BatchSize)

	msgCh := make(chan []byte, p.cfg.Workers*4)
	workCh := make(chan workItem, p.cfg.Workers*4)

	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		defer close(msgCh)
		p.readLoop(ctx, msgCh)
	}()

	var workers sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			p.workerLoop(ctx, msgCh, workCh)
		}()
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		p.writeLoop(ctx, workCh)
	}()

	readers.Wait()
	workers.Wait()
	close(workCh)
	<-writerDone

	logger.Infof("Snapshot pipeline stopped")
	return ctx.Err()
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.alertWriter != nil {
		if err := p.alertWriter.Close(); err != nil {
			logger.Errorf("Failed to close alert writer: %v", err)
		}
	}
	for _, w := range p.writers {
		if err := w.Writer.Close(); err != nil {
			logger.Errorf("Failed to close %s report writer: %v", w.Name, err)
		}
	}
	if p.source != nil {
		return p.source.Close()
	}
	return nil
}

func (p *Pipeline) readLoop(ctx context.Context, out chan<- []byte) {
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := p.source.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Failed to pop snapshot payload: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(popErrorDelay):
			}
			continue
		}
		if payload == nil {
			continue
		}
		select {
		case out <- payload:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) workerLoop(ctx context.Context, in <-chan []byte, out chan<- workItem) {
	// Payloads already popped are analyzed to completion during shutdown.
	work := context.WithoutCancel(ctx)
	for payload := range in {
		report, ok := p.process(work, payload)
		if !ok {
			continue
		}
		item := workItem{report: report}
		if p.alerter != nil {
			item.alert = p.alerter.Evaluate(report)
		}
		out <- item
	}
}

func (p *Pipeline) process(ctx context.Context, payload []byte) (*models.Report, bool) {
	snap, err := snapshot.Parse(payload)
	if err != nil {
		metrics.RecordAnalysis(metrics.StatusInvalid, 0)
		logger.Warnf("Failed to parse snapshot payload: %v", err)
		return nil, false
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(snap.Digest); ok {
			metrics.RecordCacheLookup(true)
			logger.Debugf("Snapshot %s served from cache (report=%s)", snap.Digest, cached.ReportID)
			return cached, true
		}
		metrics.RecordCacheLookup(false)
	}
	if p.lookup != nil {
		if stored, err := p.lookup.ByDigest(ctx, snap.Digest); err == nil && stored != nil {
			logger.Debugf("Snapshot %s served from report store (report=%s)", snap.Digest, stored.ReportID)
			p.remember(snap.Digest, stored)
			return stored, true
		}
	}

	report, err := p.analyzer.Analyze(ctx, snap)
	if err != nil {
		logger.Warnf("Failed to analyze snapshot (organization=%s): %v", snap.OrganizationID, err)
		return nil, false
	}
	p.remember(snap.Digest, report)
	return report, true
}

func (p *Pipeline) remember(digest string, report *models.Report) {
	if p.cache != nil {
		p.cache.Add(digest, report)
	}
}

func (p *Pipeline) writeLoop(ctx context.Context, in <-chan workItem) {
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	var batchReports []*models.Report
	var batchAlerts []*models.Alert

	flush := func() {
		if len(batchReports) > 0 {
			delivered := true
			for _, w := range p.writers {
				if !p.retry(ctx, w.Name, func() error { return w.Writer.WriteReports(batchReports) }) {
					delivered = false
				}
			}
			if delivered {
				metrics.ReportsWritten.Add(float64(len(batchReports)))
			}
			batchReports = nil
		}
		if p.alertWriter != nil && len(batchAlerts) > 0 {
			if p.retry(ctx, "alerts", func() error { return p.alertWriter.WriteAlerts(batchAlerts) }) {
				metrics.AlertsSent.Add(float64(len(batchAlerts)))
			}
			batchAlerts = nil
		}
	}

	for {
		select {
		case <-ticker.C:
			flush()
		case item, ok := <-in:
			if !ok {
				flush()
				return
			}
			batchReports = append(batchReports, item.report)
			if item.alert != nil {
				batchAlerts = append(batchAlerts, item.alert)
			}
			if len(batchReports) >= p.cfg.BatchSize {
				flush()
			}
		}
	}
}

// retry calls write until it succeeds. Once ctx is done a single further
// attempt is made; on failure the batch is dropped and retry returns false.
func (p *Pipeline) retry(ctx context.Context, sink string, write func() error) bool {
	for {
		err := write()
		if err == nil {
			return true
		}
		metrics.RecordSinkFailure(sink)
		logger.Errorf("Failed to write to %s sink: %v", sink, err)
		if ctx.Err() != nil {
			logger.Errorf("Dropping batch for %s sink after shutdown", sink)
			return false
		}
		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.RetryDelay):
		}
	}
}
