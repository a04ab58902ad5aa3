package models

import "time"

// Report is the composite result of one analysis run.
type Report struct {
	ReportID       string        `json:"report_id"`
	OrganizationID string        `json:"organization_id,omitempty"`
	SnapshotDigest string        `json:"snapshot_digest,omitempty"`
	GeneratedAt    time.Time     `json:"generated_at"`
	ProcessCount   int           `json:"process_count"`
	ResourceCount  int           `json:"resource_count"`
	ImpactScores   []ImpactScore `json:"impact_scores"`
	Graph          GraphAnalysis `json:"graph"`
	BCDR           BCDRReport    `json:"bcdr"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// ImpactScore is the time-series impact result of one process.
type ImpactScore struct {
	ProcessID            string         `json:"process_id"`
	ProcessName          string         `json:"process_name,omitempty"`
	MaxImpactPerCategory map[string]int `json:"max_impact_per_category"`
	WeightedScore        float64        `json:"weighted_score"`
	SuggestedMTPD        *SuggestedMTPD `json:"suggested_mtpd"`
}

// SuggestedMTPD is the earliest timeline point whose impact crosses the threshold.
type SuggestedMTPD struct {
	TimelinePointID string  `json:"timeline_point_id"`
	Label           string  `json:"label,omitempty"`
	Value           float64 `json:"value"`
	Unit            string  `json:"unit"`
	Hours           float64 `json:"hours"`
}

// GraphAnalysis is the network analysis result over the dependency graph.
type GraphAnalysis struct {
	DegreeCentrality []NodeDegree   `json:"degree_centrality"`
	SPOFNodes        []NodeDegree   `json:"spof_nodes"`
	CriticalPaths    []CriticalPath `json:"critical_paths"`
	NetworkStats     NetworkStats   `json:"network_stats"`
	Warnings         []string       `json:"warnings,omitempty"`
}

// NodeDegree is the degree centrality of one graph node.
type NodeDegree struct {
	NodeID    string `json:"node_id"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
	Degree    int    `json:"degree"`
}

// CriticalPath is a highest-criticality route between two nodes.
type CriticalPath struct {
	SourceID    string   `json:"source_id"`
	TargetID    string   `json:"target_id"`
	Path        []string `json:"path"`
	NodeIDs     []string `json:"node_ids"`
	Criticality int      `json:"criticality"`
	Length      int      `json:"length"`
}

// NetworkStats summarizes graph size and connectivity.
type NetworkStats struct {
	NodeCount int     `json:"node_count"`
	EdgeCount int     `json:"edge_count"`
	Density   float64 `json:"density"`
	AvgDegree float64 `json:"avg_degree"`
}

// Recovery objective kinds used by gaps.
const (
	ObjectiveRTO = "rto"
	ObjectiveRPO = "rpo"
)

// BCDRReport reconciles recovery objectives with dependent resources.
type BCDRReport struct {
	RTOGaps               []ObjectiveGap      `json:"rto_gaps"`
	RPOGaps               []ObjectiveGap      `json:"rpo_gaps"`
	SinglePointsOfFailure []ResourceExposure  `json:"single_points_of_failure"`
	MissingDependencies   []MissingDependency `json:"missing_dependencies"`
	CascadeImpacts        []ResourceExposure  `json:"cascade_impacts"`
	RecoveryPriority      []RecoveryPriority  `json:"recovery_priority"`
	Findings              []Finding           `json:"findings,omitempty"`
	ReadinessScore        int                 `json:"readiness_score"`
	CriticalIssues        int                 `json:"critical_issues"`
	Warnings              int                 `json:"warnings"`
}

// ObjectiveGap records a resource whose recovery objective exceeds the process's.
type ObjectiveGap struct {
	Objective     string  `json:"objective"`
	ProcessID     string  `json:"process_id"`
	ProcessName   string  `json:"process_name"`
	ProcessHours  float64 `json:"process_hours"`
	ResourceID    string  `json:"resource_id"`
	ResourceName  string  `json:"resource_name"`
	ResourceType  string  `json:"resource_type,omitempty"`
	ResourceHours float64 `json:"resource_hours"`
	Gap           float64 `json:"gap"`
}

// ResourceExposure lists the processes affected when a resource fails.
type ResourceExposure struct {
	ResourceID        string   `json:"resource_id"`
	ResourceName      string   `json:"resource_name"`
	ResourceType      string   `json:"resource_type,omitempty"`
	ProcessCount      int      `json:"process_count"`
	AffectedProcesses []string `json:"affected_processes"`
}

// MissingDependency flags a process without a usable dependency map.
type MissingDependency struct {
	ProcessID   string      `json:"process_id"`
	ProcessName string      `json:"process_name"`
	Coverage    MapCoverage `json:"coverage"`
}

// RecoveryPriority ranks a process for recovery ordering.
type RecoveryPriority struct {
	Rank           int     `json:"rank"`
	ProcessID      string  `json:"process_id"`
	ProcessName    string  `json:"process_name"`
	Criticality    string  `json:"criticality,omitempty"`
	RTO            float64 `json:"rto"`
	WeightedImpact float64 `json:"weighted_impact"`
	Score          float64 `json:"score"`
}

// Finding severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Finding is a per-process issue raised by consistency checks or policy rules.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Source      string `json:"source"`
	Severity    string `json:"severity"`
	ProcessID   string `json:"process_id"`
	ProcessName string `json:"process_name,omitempty"`
	Title       string `json:"title"`
	Detail      string `json:"detail,omitempty"`
}
