package analyzer

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"continuitygraph/internal/graph/dependency"
	"continuitygraph/internal/logger"
	"continuitygraph/pkg/models"
)

// maxEdgeCost is the cost base: an edge of criticality w costs maxEdgeCost - w,
// so high-criticality edges are cheaper to traverse.
const maxEdgeCost = 6

type arc struct {
	to     int
	cost   int
	weight int
}

type pathState struct {
	cost int
	prev int
	via  int // weight of the arc used to reach the node
}

// CriticalPaths finds, for every ordered pair of distinct nodes, the path that
// minimizes sum(6 - weight) and ranks discovered paths by summed raw weight.
// Unreachable pairs are skipped. When the graph exceeds maxNodes the search is
// skipped and a warning is returned.
func CriticalPaths(g *dependency.Graph, topN, maxNodes int) ([]models.CriticalPath, string) {
	if g == nil || len(g.Nodes) < 2 || len(g.Edges) == 0 {
		return []models.CriticalPath{}, ""
	}
	if maxNodes > 0 && len(g.Nodes) > maxNodes {
		warn := fmt.Sprintf("critical path search skipped: %d nodes exceeds ceiling %d", len(g.Nodes), maxNodes)
		logger.Warnf("%s", warn)
		return []models.CriticalPath{}, warn
	}

	adj := buildArcs(g)
	paths := make([]models.CriticalPath, 0, len(g.Nodes))
	for src := range g.Nodes {
		states := shortestFrom(adj, src)
		for dst := range g.Nodes {
			if dst == src || states[dst].cost == math.MaxInt {
				continue
			}
			paths = append(paths, reconstructPath(g, states, src, dst))
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Criticality != paths[j].Criticality {
			return paths[i].Criticality > paths[j].Criticality
		}
		if paths[i].Length != paths[j].Length {
			return paths[i].Length < paths[j].Length
		}
		if paths[i].SourceID != paths[j].SourceID {
			return paths[i].SourceID < paths[j].SourceID
		}
		return paths[i].TargetID < paths[j].TargetID
	})
	if topN > 0 && len(paths) > topN {
		paths = paths[:topN]
	}
	return paths, ""
}

func buildArcs(g *dependency.Graph) [][]arc {
	adj := make([][]arc, len(g.Nodes))
	for _, e := range g.Edges {
		from, okFrom := g.NodeIndex(e.Source)
		to, okTo := g.NodeIndex(e.Target)
		if !okFrom || !okTo {
			continue
		}
		adj[from] = append(adj[from], arc{to: to, cost: maxEdgeCost - e.Weight, weight: e.Weight})
	}
	return adj
}

// shortestFrom runs Dijkstra from src. Ties on cost keep the first path found,
// which is deterministic because nodes and edges are sorted.
func shortestFrom(adj [][]arc, src int) []pathState {
	states := make([]pathState, len(adj))
	for i := range states {
		states[i] = pathState{cost: math.MaxInt, prev: -1}
	}
	states[src].cost = 0

	pq := &costQueue{{node: src, cost: 0}}
	done := make([]bool, len(adj))
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(queueItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		for _, a := range adj[cur.node] {
			next := cur.cost + a.cost
			if next < states[a.to].cost {
				states[a.to] = pathState{cost: next, prev: cur.node, via: a.weight}
				heap.Push(pq, queueItem{node: a.to, cost: next})
			}
		}
	}
	return states
}

func reconstructPath(g *dependency.Graph, states []pathState, src, dst int) models.CriticalPath {
	var idx []int
	criticality := 0
	for cur := dst; cur != -1; cur = states[cur].prev {
		idx = append(idx, cur)
		if cur == src {
			break
		}
		criticality += states[cur].via
	}
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}

	labels := make([]string, 0, len(idx))
	ids := make([]string, 0, len(idx))
	for _, i := range idx {
		labels = append(labels, g.Nodes[i].Label)
		ids = append(ids, g.Nodes[i].ID)
	}
	return models.CriticalPath{
		SourceID:    g.Nodes[src].ID,
		TargetID:    g.Nodes[dst].ID,
		Path:        labels,
		NodeIDs:     ids,
		Criticality: criticality,
		Length:      len(idx),
	}
}

type queueItem struct {
	node int
	cost int
}

type costQueue []queueItem

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].node < q[j].node
}

func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x interface{}) { *q = append(*q, x.(queueItem)) }

func (q *costQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
