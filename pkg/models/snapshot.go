package models

import "time"

// Snapshot is the immutable input of one analysis run.
type Snapshot struct {
	OrganizationID       string               `json:"organization_id" yaml:"organization_id"`
	CapturedAt           time.Time            `json:"captured_at,omitempty" yaml:"captured_at"`
	Processes            []Process            `json:"processes" yaml:"processes" validate:"dive"`
	Categories           []ImpactCategory     `json:"categories" yaml:"categories" validate:"dive"`
	TimelinePoints       []TimelinePoint      `json:"timeline_points" yaml:"timeline_points" validate:"dive"`
	Assessments          []ImpactAssessment   `json:"assessments" yaml:"assessments" validate:"dive"`
	Resources            []Resource           `json:"resources" yaml:"resources" validate:"dive"`
	Dependencies         []Dependency         `json:"dependencies" yaml:"dependencies" validate:"dive"`
	ResourceDependencies []ResourceDependency `json:"resource_dependencies" yaml:"resource_dependencies" validate:"dive"`
	DependencyMaps       []DependencyMap      `json:"dependency_maps" yaml:"dependency_maps" validate:"dive"`
	Options              AnalysisOptions      `json:"options,omitempty" yaml:"options"`

	// Digest identifies the raw payload the snapshot was parsed from.
	Digest string `json:"-" yaml:"-"`
}

// AnalysisOptions overrides engine defaults for one snapshot. An omitted or zero
// field keeps the engine default; set fields must be positive.
type AnalysisOptions struct {
	ImpactThreshold     int `json:"impact_threshold,omitempty" yaml:"impact_threshold" validate:"omitempty,min=1,max=5"`
	SPOFDegreeThreshold int `json:"spof_degree_threshold,omitempty" yaml:"spof_degree_threshold" validate:"omitempty,min=1"`
	SPOFTopN            int `json:"spof_top_n,omitempty" yaml:"spof_top_n" validate:"omitempty,min=1"`
	CriticalPathTopN    int `json:"critical_path_top_n,omitempty" yaml:"critical_path_top_n" validate:"omitempty,min=1"`
	MaxPathNodes        int `json:"max_path_nodes,omitempty" yaml:"max_path_nodes" validate:"omitempty,min=1"`
	PriorityTopN        int `json:"priority_top_n,omitempty" yaml:"priority_top_n" validate:"omitempty,min=1"`
}
