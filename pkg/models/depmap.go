package models

// DependencyMap is the serialized canvas a user drew for one process.
// Node and edge payloads are owned by the UI; only Data is inspected.
type DependencyMap struct {
	ProcessID string    `json:"process_id" yaml:"process_id" validate:"required"`
	Nodes     []MapNode `json:"nodes" yaml:"nodes"`
	Edges     []MapEdge `json:"edges" yaml:"edges"`
}

// MapNode is one canvas node.
type MapNode struct {
	ID   string                 `json:"id" yaml:"id"`
	Type string                 `json:"type,omitempty" yaml:"type"`
	Data map[string]interface{} `json:"data,omitempty" yaml:"data"`
}

// MapEdge is one canvas edge.
type MapEdge struct {
	ID     string                 `json:"id,omitempty" yaml:"id"`
	Source string                 `json:"source" yaml:"source"`
	Target string                 `json:"target" yaml:"target"`
	Data   map[string]interface{} `json:"data,omitempty" yaml:"data"`
}

// MapCoverage describes how completely a process has been mapped.
type MapCoverage string

const (
	CoverageMapped   MapCoverage = "mapped"
	CoverageNoMap    MapCoverage = "no_map"
	CoverageSelfOnly MapCoverage = "self_only"
)

// ProcessResourceLink is a normalized process -> resource requirement
// derived from a dependency map.
type ProcessResourceLink struct {
	ProcessID   string `json:"process_id"`
	ResourceID  string `json:"resource_id"`
	Criticality int    `json:"criticality"`
	Quantity    int    `json:"quantity,omitempty"`
}
