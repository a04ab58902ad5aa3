package models

import "strings"

// Timeline units.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
	UnitWeeks   = "weeks"
)

// Duration is a {value, unit} time span as entered by users.
type Duration struct {
	Value float64 `json:"value" yaml:"value" validate:"gte=0"`
	Unit  string  `json:"unit" yaml:"unit" validate:"omitempty,oneof=minutes hours days weeks"`
}

// Hours converts the duration to hours. Unknown units are read as hours.
func (d Duration) Hours() float64 {
	switch strings.ToLower(strings.TrimSpace(d.Unit)) {
	case UnitMinutes:
		return d.Value / 60
	case UnitDays:
		return d.Value * 24
	case UnitWeeks:
		return d.Value * 24 * 7
	default:
		return d.Value
	}
}

// TimelinePoint is one x-axis offset of temporal impact analysis.
type TimelinePoint struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Label    string `json:"label,omitempty" yaml:"label"`
	Duration `yaml:",inline"`
}

// ImpactCategory is an organization-wide dimension of harm.
type ImpactCategory struct {
	ID     string  `json:"id" yaml:"id" validate:"required"`
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=100"`
	Color  string  `json:"color,omitempty" yaml:"color"`

	// Definitions maps timeline point id -> severity level -> description.
	Definitions map[string]map[int]string `json:"definitions,omitempty" yaml:"definitions"`
}

// ImpactAssessment is the temporal impact matrix of one process:
// timeline point id -> category id -> severity (0-5).
type ImpactAssessment struct {
	ProcessID string                    `json:"process_id" yaml:"process_id" validate:"required"`
	Matrix    map[string]map[string]int `json:"matrix" yaml:"matrix" validate:"dive,dive,min=0,max=5"`
}
