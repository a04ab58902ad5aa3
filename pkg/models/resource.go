package models

// Resource types.
const (
	ResourcePersonnel  = "personnel"
	ResourceSystems    = "systems"
	ResourceEquipment  = "equipment"
	ResourceFacilities = "facilities"
	ResourceVendors    = "vendors"
	ResourceData       = "data"
)

// Dependency types.
const (
	DependencyTechnical   = "technical"
	DependencyOperational = "operational"
	DependencyResource    = "resource"
)

// Resource is a supporting asset a process relies on.
type Resource struct {
	ID   string    `json:"id" yaml:"id" validate:"required"`
	Name string    `json:"name" yaml:"name" validate:"required"`
	Type string    `json:"type" yaml:"type" validate:"omitempty,oneof=personnel systems equipment facilities vendors data"`
	RTO  *Duration `json:"rto,omitempty" yaml:"rto"`
	RPO  *Duration `json:"rpo,omitempty" yaml:"rpo"`

	// Quantities maps timeline point id -> required quantity.
	Quantities map[string]int `json:"quantities,omitempty" yaml:"quantities"`
}

// Dependency is a directed process-to-process edge: Source requires Target.
type Dependency struct {
	ID          string `json:"id,omitempty" yaml:"id"`
	SourceID    string `json:"source_id" yaml:"source_id" validate:"required"`
	TargetID    string `json:"target_id" yaml:"target_id" validate:"required"`
	Type        string `json:"type" yaml:"type"`
	Criticality int    `json:"criticality" yaml:"criticality"`
}

// ResourceDependency is a directed resource-to-resource edge.
type ResourceDependency struct {
	ID         string `json:"id,omitempty" yaml:"id"`
	SourceID   string `json:"source_id" yaml:"source_id" validate:"required"`
	TargetID   string `json:"target_id" yaml:"target_id" validate:"required"`
	Type       string `json:"type" yaml:"type"`
	IsBlocking bool   `json:"is_blocking" yaml:"is_blocking"`
}
