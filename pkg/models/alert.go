package models

import "time"

// Alert notifies that an organization's readiness needs attention.
type Alert struct {
	AlertID        string    `json:"alert_id"`
	OrganizationID string    `json:"organization_id"`
	ReportID       string    `json:"report_id"`
	ReadinessScore int       `json:"readiness_score"`
	CriticalIssues int       `json:"critical_issues"`
	Warnings       int       `json:"warnings"`
	Reasons        []string  `json:"reasons"`
	GeneratedAt    time.Time `json:"generated_at"`
}
