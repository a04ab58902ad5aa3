// Package alerts raises readiness alerts from analysis reports.
package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"continuitygraph/pkg/models"
)

// Defaults for readiness alerting.
const (
	DefaultThreshold = 70
	DefaultCooldown  = time.Hour
)

// Config controls readiness alerting.
type Config struct {
	// Threshold is the readiness score below which an alert is raised.
	Threshold int
	Cooldown  time.Duration
}

// Alerter turns reports into alerts, at most one per organization per cooldown.
type Alerter struct {
	mu        sync.Mutex
	cfg       Config
	lastAlert map[string]time.Time
	now       func() time.Time
}

// NewAlerter creates a readiness alerter.
func NewAlerter(cfg Config) *Alerter {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Alerter{
		cfg:       cfg,
		lastAlert: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Evaluate returns an alert for the report, or nil when readiness is
// acceptable or the organization is still cooling down.
func (a *Alerter) Evaluate(report *models.Report) *models.Alert {
	if report == nil {
		return nil
	}
	reasons := a.reasons(report.BCDR)
	if len(reasons) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	org := report.OrganizationID
	if last, ok := a.lastAlert[org]; ok && now.Sub(last) < a.cfg.Cooldown {
		return nil
	}
	a.lastAlert[org] = now

	return &models.Alert{
		AlertID:        uuid.NewString(),
		OrganizationID: org,
		ReportID:       report.ReportID,
		ReadinessScore: report.BCDR.ReadinessScore,
		CriticalIssues: report.BCDR.CriticalIssues,
		Warnings:       report.BCDR.Warnings,
		Reasons:        reasons,
		GeneratedAt:    now.UTC(),
	}
}

func (a *Alerter) reasons(b models.BCDRReport) []string {
	var out []string
	if b.ReadinessScore < a.cfg.Threshold {
		out = append(out, fmt.Sprintf("readiness %d%% below threshold %d%%", b.ReadinessScore, a.cfg.Threshold))
	}
	if b.CriticalIssues == 0 {
		return out
	}
	out = append(out, fmt.Sprintf("%d critical issues", b.CriticalIssues))
	if n := len(b.RTOGaps); n > 0 {
		out = append(out, fmt.Sprintf("%d RTO gaps", n))
	}
	if n := len(b.SinglePointsOfFailure); n > 0 {
		out = append(out, fmt.Sprintf("%d shared single points of failure", n))
	}
	for _, f := range b.Findings {
		if f.Severity == models.SeverityCritical {
			out = append(out, fmt.Sprintf("%s: %s", f.ProcessName, f.Title))
		}
	}
	return out
}
