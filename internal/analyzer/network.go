package analyzer

import (
	"sort"

	"continuitygraph/internal/graph/dependency"
	"continuitygraph/pkg/models"
)

// Defaults for network analysis.
const (
	DefaultSPOFDegreeThreshold = 2
	DefaultSPOFTopN            = 10
	DefaultCriticalPathTopN    = 20
	DefaultMaxPathNodes        = 500
)

// Config controls network analysis.
type Config struct {
	SPOFDegreeThreshold int
	SPOFTopN            int
	CriticalPathTopN    int
	// MaxPathNodes is the node ceiling above which critical path search is skipped.
	MaxPathNodes int
}

func (c Config) withDefaults() Config {
	if c.SPOFDegreeThreshold <= 0 {
		c.SPOFDegreeThreshold = DefaultSPOFDegreeThreshold
	}
	if c.SPOFTopN <= 0 {
		c.SPOFTopN = DefaultSPOFTopN
	}
	if c.CriticalPathTopN <= 0 {
		c.CriticalPathTopN = DefaultCriticalPathTopN
	}
	if c.MaxPathNodes <= 0 {
		c.MaxPathNodes = DefaultMaxPathNodes
	}
	return c
}

// Analyze runs every network query over g.
func Analyze(g *dependency.Graph, cfg Config) models.GraphAnalysis {
	cfg = cfg.withDefaults()
	degrees := DegreeCentrality(g)
	paths, warn := CriticalPaths(g, cfg.CriticalPathTopN, cfg.MaxPathNodes)

	out := models.GraphAnalysis{
		DegreeCentrality: degrees,
		SPOFNodes:        DetectSPOF(degrees, cfg.SPOFDegreeThreshold, cfg.SPOFTopN),
		CriticalPaths:    paths,
		NetworkStats:     Stats(g),
	}
	if g != nil {
		out.Warnings = append(out.Warnings, g.Warnings...)
	}
	if warn != "" {
		out.Warnings = append(out.Warnings, warn)
	}
	return out
}

// DegreeCentrality returns in+out degree per node, in graph node order.
func DegreeCentrality(g *dependency.Graph) []models.NodeDegree {
	if g == nil {
		return []models.NodeDegree{}
	}
	in := make([]int, len(g.Nodes))
	out := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		if i, ok := g.NodeIndex(e.Source); ok {
			out[i]++
		}
		if i, ok := g.NodeIndex(e.Target); ok {
			in[i]++
		}
	}

	degrees := make([]models.NodeDegree, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		degrees = append(degrees, models.NodeDegree{
			NodeID:    n.ID,
			Label:     n.Label,
			Kind:      n.Kind,
			InDegree:  in[i],
			OutDegree: out[i],
			Degree:    in[i] + out[i],
		})
	}
	return degrees
}

// DetectSPOF flags nodes whose undirected degree exceeds threshold, sorted by
// degree descending then node id, capped at topN (0 means no cap).
func DetectSPOF(degrees []models.NodeDegree, threshold, topN int) []models.NodeDegree {
	out := make([]models.NodeDegree, 0, len(degrees))
	for _, d := range degrees {
		if d.Degree > threshold {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}
		return out[i].NodeID < out[j].NodeID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Stats computes node/edge counts, density and average degree.
func Stats(g *dependency.Graph) models.NetworkStats {
	if g == nil {
		return models.NetworkStats{}
	}
	v := float64(len(g.Nodes))
	e := float64(len(g.Edges))
	stats := models.NetworkStats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}
	if len(g.Nodes) >= 2 {
		stats.Density = 2 * e / (v * (v - 1))
	}
	if len(g.Nodes) > 0 {
		stats.AvgDegree = 2 * e / v
	}
	return stats
}
