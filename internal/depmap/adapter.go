// Package depmap normalizes per-process canvas dependency maps into
// process -> resource links. Only node Data attributes are inspected; canvas
// node id conventions are not relied upon beyond self-node detection.
package depmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"continuitygraph/pkg/models"
)

// DefaultLinkCriticality is used when neither node nor edge carries a criticality.
const DefaultLinkCriticality = 3

// Result is the normalized view of all dependency maps in a snapshot.
type Result struct {
	Links    []models.ProcessResourceLink
	Coverage map[string]models.MapCoverage
	Warnings []string
}

type linkKey struct {
	process  string
	resource string
}

// Normalize converts dependency maps into deduplicated, sorted process -> resource links
// and records per-process map coverage.
func Normalize(processes []models.Process, resources []models.Resource, maps []models.DependencyMap) Result {
	known := make(map[string]struct{}, len(processes))
	for _, p := range processes {
		known[p.ID] = struct{}{}
	}
	byID := make(map[string]models.Resource, len(resources))
	byName := make(map[string]models.Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
		if name := normalizeName(r.Name); name != "" {
			byName[name] = r
		}
	}

	res := Result{Coverage: make(map[string]models.MapCoverage, len(processes))}
	for _, p := range processes {
		res.Coverage[p.ID] = models.CoverageNoMap
	}

	links := make(map[linkKey]models.ProcessResourceLink, 64)
	for _, m := range maps {
		if _, ok := known[m.ProcessID]; !ok {
			continue
		}

		edgeCrit := edgeCriticalityByNode(m.Edges)
		nonSelf := 0
		for _, node := range m.Nodes {
			if isSelfNode(node, m.ProcessID) {
				continue
			}
			nonSelf++

			resourceType := stringAttr(node.Data, "resourceType")
			if resourceType == "" {
				continue
			}
			resourceID, ok := resolveResource(node, byID, byName)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("dependency map of process %s references unresolvable resource node %s", m.ProcessID, node.ID))
				continue
			}

			crit := DefaultLinkCriticality
			if v, ok := intAttr(node.Data, "criticality"); ok {
				crit = v
			}
			if v, ok := edgeCrit[node.ID]; ok && v > 0 {
				crit = v
			}
			qty, _ := intAttr(node.Data, "quantity")

			k := linkKey{process: m.ProcessID, resource: resourceID}
			if prev, exists := links[k]; exists {
				if prev.Criticality > crit {
					crit = prev.Criticality
				}
				if prev.Quantity > qty {
					qty = prev.Quantity
				}
			}
			links[k] = models.ProcessResourceLink{
				ProcessID:   m.ProcessID,
				ResourceID:  resourceID,
				Criticality: crit,
				Quantity:    qty,
			}
		}

		switch {
		case nonSelf > 0:
			res.Coverage[m.ProcessID] = models.CoverageMapped
		case res.Coverage[m.ProcessID] != models.CoverageMapped:
			res.Coverage[m.ProcessID] = models.CoverageSelfOnly
		}
	}

	res.Links = make([]models.ProcessResourceLink, 0, len(links))
	for _, l := range links {
		res.Links = append(res.Links, l)
	}
	sort.Slice(res.Links, func(i, j int) bool {
		if res.Links[i].ProcessID != res.Links[j].ProcessID {
			return res.Links[i].ProcessID < res.Links[j].ProcessID
		}
		return res.Links[i].ResourceID < res.Links[j].ResourceID
	})
	return res
}

// isSelfNode reports whether node stands for the map's own process.
func isSelfNode(node models.MapNode, processID string) bool {
	if node.ID == processID {
		return true
	}
	if stringAttr(node.Data, "processId") == processID {
		return true
	}
	if b, ok := node.Data["isSelf"].(bool); ok && b {
		return true
	}
	switch strings.ToLower(node.Type) {
	case "self", "root":
		return true
	}
	return false
}

func resolveResource(node models.MapNode, byID, byName map[string]models.Resource) (string, bool) {
	id := stringAttr(node.Data, "resourceId")
	if _, ok := byID[id]; ok && id != "" {
		return id, true
	}
	for _, key := range []string{"label", "name"} {
		if r, ok := byName[normalizeName(stringAttr(node.Data, key))]; ok {
			return r.ID, true
		}
	}
	// An unknown id is kept; the graph builder reports it as a dangling reference.
	return id, id != ""
}

// edgeCriticalityByNode returns the highest edge criticality touching each node.
func edgeCriticalityByNode(edges []models.MapEdge) map[string]int {
	out := make(map[string]int, len(edges))
	for _, e := range edges {
		v, ok := intAttr(e.Data, "criticality")
		if !ok {
			continue
		}
		for _, id := range []string{e.Source, e.Target} {
			if v > out[id] {
				out[id] = v
			}
		}
	}
	return out
}

func stringAttr(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func intAttr(data map[string]interface{}, key string) (int, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func normalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
