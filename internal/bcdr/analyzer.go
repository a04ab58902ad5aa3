// Package bcdr reconciles process recovery objectives with the resources
// each process depends on and produces the readiness report.
package bcdr

import (
	"sort"

	"continuitygraph/internal/graph/dependency"
	"continuitygraph/pkg/models"
)

// DefaultPriorityTopN caps the recovery priority list.
const DefaultPriorityTopN = 10

// Config controls report assembly.
type Config struct {
	PriorityTopN int
}

// Input is everything the gap analysis reads. Process-resource links are
// taken from the graph's process-resource edges.
type Input struct {
	Processes []models.Process
	Resources []models.Resource
	Graph     *dependency.Graph
	Coverage  map[string]models.MapCoverage
	Scores    map[string]models.ImpactScore
}

// Analyze runs every gap check and returns the assembled report.
func Analyze(in Input, cfg Config) models.BCDRReport {
	if cfg.PriorityTopN <= 0 {
		cfg.PriorityTopN = DefaultPriorityTopN
	}

	processes := sortedProcesses(in.Processes)
	deps := ResourcesByProcess(in.Graph)
	resources := make(map[string]models.Resource, len(in.Resources))
	for _, r := range in.Resources {
		resources[r.ID] = r
	}

	cascade := CascadeImpacts(processes, resources, deps)
	rep := models.BCDRReport{
		RTOGaps:               RTOGaps(processes, resources, deps),
		RPOGaps:               RPOGaps(processes, resources, deps),
		SinglePointsOfFailure: SinglePointsOfFailure(cascade),
		MissingDependencies:   MissingDependencies(processes, in.Coverage),
		CascadeImpacts:        cascade,
		RecoveryPriority:      RecoveryPriority(processes, in.Scores, cfg.PriorityTopN),
		Findings:              ConsistencyFindings(processes, in.Scores),
	}
	rep.ReadinessScore = Readiness(len(processes), len(rep.RTOGaps), len(rep.RPOGaps),
		len(rep.MissingDependencies), len(rep.SinglePointsOfFailure))
	Summarize(&rep)
	return rep
}

// ResourcesByProcess returns, per process id, the ids of the resources the
// process links to, in edge order.
func ResourcesByProcess(g *dependency.Graph) map[string][]string {
	out := make(map[string][]string)
	if g == nil {
		return out
	}
	for _, e := range g.EdgesOfType(dependency.EdgeProcessResource) {
		src, okSrc := g.Node(e.Source)
		dst, okDst := g.Node(e.Target)
		if !okSrc || !okDst || src.Kind != dependency.KindProcess || dst.Kind != dependency.KindResource {
			continue
		}
		if containsString(out[src.RefID], dst.RefID) {
			continue
		}
		out[src.RefID] = append(out[src.RefID], dst.RefID)
	}
	return out
}

// RTOGaps reports every linked resource whose RTO exceeds the process RTO.
// Processes without an RTO never produce a gap.
func RTOGaps(processes []models.Process, resources map[string]models.Resource, deps map[string][]string) []models.ObjectiveGap {
	return objectiveGaps(models.ObjectiveRTO, processes, resources, deps,
		func(p models.Process) *float64 { return p.Recovery.RTO },
		func(r models.Resource) *models.Duration { return r.RTO },
		func(models.Resource) bool { return true })
}

// RPOGaps is RTOGaps for RPO, restricted to data and systems resources.
func RPOGaps(processes []models.Process, resources map[string]models.Resource, deps map[string][]string) []models.ObjectiveGap {
	return objectiveGaps(models.ObjectiveRPO, processes, resources, deps,
		func(p models.Process) *float64 { return p.Recovery.RPO },
		func(r models.Resource) *models.Duration { return r.RPO },
		func(r models.Resource) bool { return r.Type == models.ResourceData || r.Type == models.ResourceSystems })
}

func objectiveGaps(
	objective string,
	processes []models.Process,
	resources map[string]models.Resource,
	deps map[string][]string,
	processValue func(models.Process) *float64,
	resourceValue func(models.Resource) *models.Duration,
	eligible func(models.Resource) bool,
) []models.ObjectiveGap {
	gaps := make([]models.ObjectiveGap, 0)
	for _, p := range processes {
		target := processValue(p)
		if target == nil {
			continue
		}
		for _, rid := range deps[p.ID] {
			r, ok := resources[rid]
			if !ok || !eligible(r) {
				continue
			}
			d := resourceValue(r)
			if d == nil {
				continue
			}
			hours := d.Hours()
			if hours <= *target {
				continue
			}
			gaps = append(gaps, models.ObjectiveGap{
				Objective:     objective,
				ProcessID:     p.ID,
				ProcessName:   p.Name,
				ProcessHours:  *target,
				ResourceID:    r.ID,
				ResourceName:  r.Name,
				ResourceType:  r.Type,
				ResourceHours: hours,
				Gap:           hours - *target,
			})
		}
	}
	return gaps
}

// CascadeImpacts lists every resource with at least one dependent process,
// sorted by process count descending then resource id.
func CascadeImpacts(processes []models.Process, resources map[string]models.Resource, deps map[string][]string) []models.ResourceExposure {
	byResource := make(map[string][]string)
	for _, p := range processes {
		for _, rid := range deps[p.ID] {
			if _, ok := resources[rid]; !ok {
				continue
			}
			byResource[rid] = append(byResource[rid], labelOr(p.Name, p.ID))
		}
	}

	out := make([]models.ResourceExposure, 0, len(byResource))
	for rid, affected := range byResource {
		r := resources[rid]
		out = append(out, models.ResourceExposure{
			ResourceID:        r.ID,
			ResourceName:      r.Name,
			ResourceType:      r.Type,
			ProcessCount:      len(affected),
			AffectedProcesses: affected,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProcessCount != out[j].ProcessCount {
			return out[i].ProcessCount > out[j].ProcessCount
		}
		return out[i].ResourceID < out[j].ResourceID
	})
	return out
}

// SinglePointsOfFailure keeps the cascade entries shared by two or more processes.
func SinglePointsOfFailure(cascade []models.ResourceExposure) []models.ResourceExposure {
	out := make([]models.ResourceExposure, 0, len(cascade))
	for _, c := range cascade {
		if c.ProcessCount >= 2 {
			out = append(out, c)
		}
	}
	return out
}

// MissingDependencies flags processes with no map or a self-only map.
func MissingDependencies(processes []models.Process, coverage map[string]models.MapCoverage) []models.MissingDependency {
	out := make([]models.MissingDependency, 0)
	for _, p := range processes {
		c, ok := coverage[p.ID]
		if !ok {
			c = models.CoverageNoMap
		}
		if c == models.CoverageMapped {
			continue
		}
		out = append(out, models.MissingDependency{ProcessID: p.ID, ProcessName: p.Name, Coverage: c})
	}
	return out
}

func sortedProcesses(in []models.Process) []models.Process {
	out := make([]models.Process, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
