// Package policy evaluates organization-defined continuity rules against
// per-process facts.
package policy

import (
	"context"
	"sort"
	"strconv"

	"continuitygraph/pkg/models"
)

// FindingSource marks findings raised by policy rules.
const FindingSource = "policy"

// Engine evaluates rules and returns the findings they raise.
type Engine interface {
	Evaluate(ctx context.Context, facts []Facts) []models.Finding
}

// NoopEngine raises nothing.
type NoopEngine struct{}

// Evaluate returns no findings.
func (n *NoopEngine) Evaluate(ctx context.Context, facts []Facts) []models.Finding {
	return nil
}

// Facts is the flat field map one process is matched as. Values are strings
// so rule authors match them the same way regardless of origin.
type Facts struct {
	ProcessID   string
	ProcessName string
	Fields      map[string]interface{}
}

// BuildFacts derives one fact map per process from the assembled report.
func BuildFacts(processes []models.Process, rep models.BCDRReport, coverage map[string]models.MapCoverage, deps map[string][]string) []Facts {
	rtoGaps := countByProcess(rep.RTOGaps)
	rpoGaps := countByProcess(rep.RPOGaps)

	out := make([]Facts, 0, len(processes))
	for _, p := range processes {
		c, ok := coverage[p.ID]
		if !ok {
			c = models.CoverageNoMap
		}
		out = append(out, Facts{
			ProcessID:   p.ID,
			ProcessName: p.Name,
			Fields: map[string]interface{}{
				"ProcessID":              p.ID,
				"Name":                   p.Name,
				"Department":             p.Department,
				"Criticality":            p.Criticality,
				"Status":                 p.Status,
				"RecoveryStrategy":       p.Recovery.Strategy,
				"MinimumBCO":             strconv.FormatBool(p.Recovery.MinimumBCO),
				"HasRTO":                 strconv.FormatBool(p.Recovery.RTO != nil),
				"HasDependencyMap":       strconv.FormatBool(c == models.CoverageMapped),
				"RTOGapCount":            strconv.Itoa(rtoGaps[p.ID]),
				"RPOGapCount":            strconv.Itoa(rpoGaps[p.ID]),
				"DependentResourceCount": strconv.Itoa(len(deps[p.ID])),
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProcessID < out[j].ProcessID })
	return out
}

func countByProcess(gaps []models.ObjectiveGap) map[string]int {
	out := make(map[string]int)
	for _, g := range gaps {
		out[g.ProcessID]++
	}
	return out
}
