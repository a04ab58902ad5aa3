// Package dependency builds the directed process/resource dependency multigraph.
package dependency

import (
	"fmt"
	"sort"
	"strings"

	"continuitygraph/internal/logger"
	"continuitygraph/pkg/models"
)

// Node kinds.
const (
	KindProcess  = "process"
	KindResource = "resource"
)

// EdgeProcessResource is the edge type of links derived from dependency maps.
const EdgeProcessResource = "process-resource"

const (
	blockingWeight    = 5
	nonBlockingWeight = 3
	defaultWeight     = 3
	minWeight         = 1
	maxWeight         = 5
)

// Node is a process or resource vertex.
type Node struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	RefID        string `json:"ref_id"`
	Label        string `json:"label"`
	ResourceType string `json:"resource_type,omitempty"`
}

// Edge is a directed, typed, weighted dependency: Source requires Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Weight int    `json:"criticality_weight"`
}

// Graph is an immutable dependency multigraph. Nodes and edges are sorted.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Warnings []string `json:"warnings,omitempty"`

	index map[string]int
}

// Input is the record set a graph is built from.
type Input struct {
	Processes            []models.Process
	Resources            []models.Resource
	Dependencies         []models.Dependency
	ResourceDependencies []models.ResourceDependency
	Links                []models.ProcessResourceLink
}

// ProcessNodeID returns the node key of a process.
func ProcessNodeID(id string) string {
	return KindProcess + ":" + id
}

// ResourceNodeID returns the node key of a resource.
func ResourceNodeID(id string) string {
	return KindResource + ":" + id
}

// Build assembles the graph. Edges referencing unknown nodes are skipped and
// reported in Warnings.
func Build(in Input) *Graph {
	nodes := make([]Node, 0, len(in.Processes)+len(in.Resources))
	seen := make(map[string]struct{}, cap(nodes))
	addNode := func(n Node) {
		if _, ok := seen[n.ID]; ok {
			return
		}
		seen[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}
	for _, p := range in.Processes {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		addNode(Node{ID: ProcessNodeID(p.ID), Kind: KindProcess, RefID: p.ID, Label: labelOr(p.Name, p.ID)})
	}
	for _, r := range in.Resources {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		addNode(Node{ID: ResourceNodeID(r.ID), Kind: KindResource, RefID: r.ID, Label: labelOr(r.Name, r.ID), ResourceType: r.Type})
	}

	g := &Graph{Nodes: nodes}
	edges := make([]Edge, 0, len(in.Dependencies)+len(in.ResourceDependencies)+len(in.Links))
	addEdge := func(kind string, e Edge) {
		_, okSrc := seen[e.Source]
		_, okDst := seen[e.Target]
		if !okSrc || !okDst {
			msg := fmt.Sprintf("skipping %s edge %s -> %s: unknown endpoint", kind, e.Source, e.Target)
			logger.Warnf("%s", msg)
			g.Warnings = append(g.Warnings, msg)
			return
		}
		edges = append(edges, e)
	}

	for _, d := range in.Dependencies {
		typ := d.Type
		if typ == "" {
			typ = models.DependencyOperational
		}
		addEdge("process", Edge{
			Source: ProcessNodeID(d.SourceID),
			Target: ProcessNodeID(d.TargetID),
			Type:   typ,
			Weight: clampWeight(d.Criticality),
		})
	}
	for _, d := range in.ResourceDependencies {
		weight := nonBlockingWeight
		if d.IsBlocking {
			weight = blockingWeight
		}
		addEdge("resource", Edge{
			Source: ResourceNodeID(d.SourceID),
			Target: ResourceNodeID(d.TargetID),
			Type:   d.Type,
			Weight: weight,
		})
	}
	for _, l := range in.Links {
		addEdge("process-resource", Edge{
			Source: ProcessNodeID(l.ProcessID),
			Target: ResourceNodeID(l.ResourceID),
			Type:   EdgeProcessResource,
			Weight: clampWeight(l.Criticality),
		})
	}

	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	sort.Slice(edges, func(i, j int) bool { return compareEdges(edges[i], edges[j]) < 0 })
	g.Edges = edges
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
	return g
}

// Node returns the node with the given key.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.NodeIndex(id)
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// NodeIndex returns the position of a node in Nodes.
func (g *Graph) NodeIndex(id string) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.index[id]
	return i, ok
}

// EdgesOfType returns edges with the given type, in graph order.
func (g *Graph) EdgesOfType(typ string) []Edge {
	if g == nil {
		return nil
	}
	out := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func compareEdges(a, b Edge) int {
	if a.Source != b.Source {
		return strings.Compare(a.Source, b.Source)
	}
	if a.Target != b.Target {
		return strings.Compare(a.Target, b.Target)
	}
	if a.Type != b.Type {
		return strings.Compare(a.Type, b.Type)
	}
	return a.Weight - b.Weight
}

func clampWeight(w int) int {
	if w == 0 {
		return defaultWeight
	}
	if w < minWeight {
		return minWeight
	}
	if w > maxWeight {
		return maxWeight
	}
	return w
}

func labelOr(label, fallback string) string {
	if v := strings.TrimSpace(label); v != "" {
		return v
	}
	return fallback
}
