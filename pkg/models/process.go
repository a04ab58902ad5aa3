package models

// Criticality tiers, lowest to highest.
const (
	CriticalityMinimal  = "minimal"
	CriticalityLow      = "low"
	CriticalityMedium   = "medium"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"
)

// Process lifecycle statuses.
const (
	StatusDraft    = "draft"
	StatusInReview = "in-review"
	StatusApproved = "approved"
)

// Process is a business activity under analysis.
type Process struct {
	ID          string            `json:"id" yaml:"id" validate:"required"`
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Department  string            `json:"department,omitempty" yaml:"department"`
	Owner       string            `json:"owner,omitempty" yaml:"owner"`
	Criticality string            `json:"criticality,omitempty" yaml:"criticality" validate:"omitempty,oneof=minimal low medium high critical"`
	Status      string            `json:"status,omitempty" yaml:"status" validate:"omitempty,oneof=draft in-review approved"`
	Cancelled   bool              `json:"cancelled,omitempty" yaml:"cancelled"`
	Recovery    RecoveryObjective `json:"recovery" yaml:"recovery"`
}

// RecoveryObjective holds the per-process recovery targets, all in hours.
// A nil value means the objective is not defined.
type RecoveryObjective struct {
	MTPD       *float64 `json:"mtpd,omitempty" yaml:"mtpd" validate:"omitempty,gte=0"`
	RTO        *float64 `json:"rto,omitempty" yaml:"rto" validate:"omitempty,gte=0"`
	RPO        *float64 `json:"rpo,omitempty" yaml:"rpo" validate:"omitempty,gte=0"`
	MinimumBCO bool     `json:"minimum_bco,omitempty" yaml:"minimum_bco"`
	Strategy   string   `json:"strategy,omitempty" yaml:"strategy"`
}

// Hours returns a pointer to h, for building objectives in code.
func Hours(h float64) *float64 {
	return &h
}
