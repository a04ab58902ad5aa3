// Package engine runs the full impact, dependency and readiness analysis over
// one snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"continuitygraph/internal/analyzer"
	"continuitygraph/internal/bcdr"
	"continuitygraph/internal/depmap"
	"continuitygraph/internal/graph/dependency"
	"continuitygraph/internal/impact"
	"continuitygraph/internal/logger"
	"continuitygraph/internal/metrics"
	"continuitygraph/internal/policy"
	"continuitygraph/pkg/models"
)

// ErrNilSnapshot is returned when Analyze is called without a snapshot.
var ErrNilSnapshot = errors.New("nil snapshot")

// Options are the engine-wide analysis defaults. Snapshot options override
// non-zero fields per run.
type Options struct {
	ImpactThreshold     int
	SPOFDegreeThreshold int
	SPOFTopN            int
	CriticalPathTopN    int
	MaxPathNodes        int
	PriorityTopN        int
}

// DefaultOptions returns the stock analysis settings.
func DefaultOptions() Options {
	return Options{
		ImpactThreshold:     impact.DefaultThreshold,
		SPOFDegreeThreshold: analyzer.DefaultSPOFDegreeThreshold,
		SPOFTopN:            analyzer.DefaultSPOFTopN,
		CriticalPathTopN:    analyzer.DefaultCriticalPathTopN,
		MaxPathNodes:        analyzer.DefaultMaxPathNodes,
		PriorityTopN:        bcdr.DefaultPriorityTopN,
	}
}

// Engine is stateless between runs and safe for concurrent use.
type Engine struct {
	opts   Options
	policy policy.Engine
	now    func() time.Time
}

// New creates an engine. A nil policy engine evaluates no rules.
func New(opts Options, rules policy.Engine) *Engine {
	def := DefaultOptions()
	opts = merge(def, opts)
	if rules == nil {
		rules = &policy.NoopEngine{}
	}
	return &Engine{opts: opts, policy: rules, now: time.Now}
}

// Options returns the effective engine defaults.
func (e *Engine) Options() Options {
	return e.opts
}

// Analyze produces the composite report. It fails only on a nil snapshot or
// a cancelled context.
func (e *Engine) Analyze(ctx context.Context, snap *models.Snapshot) (*models.Report, error) {
	start := e.now()
	if snap == nil {
		metrics.RecordAnalysis(metrics.StatusInvalid, 0)
		return nil, ErrNilSnapshot
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordAnalysis(metrics.StatusCancelled, 0)
		return nil, fmt.Errorf("analyze snapshot: %w", err)
	}

	opts := merge(e.opts, fromSnapshot(snap.Options))
	processes := activeProcesses(snap.Processes)

	var (
		scores  map[string]models.ImpactScore
		scorer  *impact.Scorer
		mapping depmap.Result
		graph   *dependency.Graph
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scorer = impact.NewScorer(snap.Categories, snap.TimelinePoints, impact.Config{Threshold: opts.ImpactThreshold})
		scores = scorer.ScoreAll(processes, snap.Assessments)
		return gctx.Err()
	})
	g.Go(func() error {
		mapping = depmap.Normalize(processes, snap.Resources, snap.DependencyMaps)
		graph = dependency.Build(dependency.Input{
			Processes:            processes,
			Resources:            snap.Resources,
			Dependencies:         snap.Dependencies,
			ResourceDependencies: snap.ResourceDependencies,
			Links:                mapping.Links,
		})
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		metrics.RecordAnalysis(metrics.StatusCancelled, e.now().Sub(start))
		return nil, fmt.Errorf("analyze snapshot: %w", err)
	}

	network := analyzer.Analyze(graph, analyzer.Config{
		SPOFDegreeThreshold: opts.SPOFDegreeThreshold,
		SPOFTopN:            opts.SPOFTopN,
		CriticalPathTopN:    opts.CriticalPathTopN,
		MaxPathNodes:        opts.MaxPathNodes,
	})

	in := bcdr.Input{
		Processes: processes,
		Resources: snap.Resources,
		Graph:     graph,
		Coverage:  mapping.Coverage,
		Scores:    scores,
	}
	gaps := bcdr.Analyze(in, bcdr.Config{PriorityTopN: opts.PriorityTopN})

	facts := policy.BuildFacts(processes, gaps, mapping.Coverage, bcdr.ResourcesByProcess(graph))
	if findings := e.policy.Evaluate(ctx, facts); len(findings) > 0 {
		gaps.Findings = append(gaps.Findings, findings...)
		bcdr.Summarize(&gaps)
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordAnalysis(metrics.StatusCancelled, e.now().Sub(start))
		return nil, fmt.Errorf("analyze snapshot: %w", err)
	}

	report := &models.Report{
		ReportID:       uuid.NewString(),
		OrganizationID: snap.OrganizationID,
		SnapshotDigest: snap.Digest,
		GeneratedAt:    e.now().UTC(),
		ProcessCount:   len(processes),
		ResourceCount:  len(snap.Resources),
		ImpactScores:   sortedScores(scores),
		Graph:          network,
		BCDR:           gaps,
	}
	if len(snap.Categories) > 0 && !scorer.Weighted() {
		msg := "impact category weights do not sum to 100; weighted scores set to 0"
		logger.Warnf("%s (organization=%s)", msg, snap.OrganizationID)
		report.Warnings = append(report.Warnings, msg)
	}
	report.Warnings = append(report.Warnings, mapping.Warnings...)
	report.Warnings = append(report.Warnings, network.Warnings...)

	metrics.RecordSkippedEdges(len(graph.Warnings))
	metrics.RecordReadiness(snap.OrganizationID, gaps.ReadinessScore)
	metrics.RecordAnalysis(metrics.StatusOK, e.now().Sub(start))
	logger.Debugf("analysis done: org=%s processes=%d resources=%d readiness=%d",
		snap.OrganizationID, report.ProcessCount, report.ResourceCount, gaps.ReadinessScore)
	return report, nil
}

func activeProcesses(in []models.Process) []models.Process {
	out := make([]models.Process, 0, len(in))
	for _, p := range in {
		if p.Cancelled {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortedScores(scores map[string]models.ImpactScore) []models.ImpactScore {
	out := make([]models.ImpactScore, 0, len(scores))
	for _, s := range scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessID < out[j].ProcessID })
	return out
}

func fromSnapshot(o models.AnalysisOptions) Options {
	return Options{
		ImpactThreshold:     o.ImpactThreshold,
		SPOFDegreeThreshold: o.SPOFDegreeThreshold,
		SPOFTopN:            o.SPOFTopN,
		CriticalPathTopN:    o.CriticalPathTopN,
		MaxPathNodes:        o.MaxPathNodes,
		PriorityTopN:        o.PriorityTopN,
	}
}

// merge returns base with every positive field of override applied.
func merge(base, override Options) Options {
	pick := func(b, o int) int {
		if o > 0 {
			return o
		}
		return b
	}
	return Options{
		ImpactThreshold:     pick(base.ImpactThreshold, override.ImpactThreshold),
		SPOFDegreeThreshold: pick(base.SPOFDegreeThreshold, override.SPOFDegreeThreshold),
		SPOFTopN:            pick(base.SPOFTopN, override.SPOFTopN),
		CriticalPathTopN:    pick(base.CriticalPathTopN, override.CriticalPathTopN),
		MaxPathNodes:        pick(base.MaxPathNodes, override.MaxPathNodes),
		PriorityTopN:        pick(base.PriorityTopN, override.PriorityTopN),
	}
}
