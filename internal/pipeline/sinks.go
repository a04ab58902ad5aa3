package pipeline

import "continuitygraph/pkg/models"

// ReportWriter writes analysis reports.
type ReportWriter interface {
	WriteReports(reports []*models.Report) error
	Close() error
}

// NamedReportWriter labels a report sink for logs and metrics.
type NamedReportWriter struct {
	Name   string
	Writer ReportWriter
}

// AlertWriter delivers readiness alerts.
type AlertWriter interface {
	WriteAlerts(alerts []*models.Alert) error
	Close() error
}
