package pipeline

import (
	"context"

	"continuitygraph/pkg/models"
)

// Source yields raw snapshot payloads. Pop returns nil, nil when nothing is
// available yet.
type Source interface {
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}

// Analyzer turns a snapshot into a report.
type Analyzer interface {
	Analyze(ctx context.Context, snap *models.Snapshot) (*models.Report, error)
}

// ReportLookup finds a previously stored report by snapshot digest. It is
// consulted on cache misses before running the analyzer.
type ReportLookup interface {
	ByDigest(ctx context.Context, digest string) (*models.Report, error)
}
