package bcdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/internal/graph/dependency"
	"continuitygraph/pkg/models"
)

func hours(v float64) *models.Duration {
	return &models.Duration{Value: v, Unit: models.UnitHours}
}

func buildInput(processes []models.Process, resources []models.Resource, links []models.ProcessResourceLink) Input {
	g := dependency.Build(dependency.Input{Processes: processes, Resources: resources, Links: links})
	coverage := make(map[string]models.MapCoverage)
	for _, l := range links {
		coverage[l.ProcessID] = models.CoverageMapped
	}
	return Input{Processes: processes, Resources: resources, Graph: g, Coverage: coverage}
}

func sharedResourceInput() Input {
	processes := []models.Process{
		{ID: "p1", Name: "Payroll", Recovery: models.RecoveryObjective{RTO: models.Hours(4)}},
		{ID: "p2", Name: "Billing", Recovery: models.RecoveryObjective{RTO: models.Hours(4)}},
		{ID: "p3", Name: "Support", Recovery: models.RecoveryObjective{RTO: models.Hours(4)}},
	}
	resources := []models.Resource{{ID: "erp", Name: "ERP", Type: models.ResourceSystems, RTO: hours(48)}}
	links := []models.ProcessResourceLink{
		{ProcessID: "p1", ResourceID: "erp"},
		{ProcessID: "p2", ResourceID: "erp"},
		{ProcessID: "p3", ResourceID: "erp"},
	}
	return buildInput(processes, resources, links)
}

func TestSharedSlowResourceProducesGapsAndSPOF(t *testing.T) {
	rep := Analyze(sharedResourceInput(), Config{})

	require.Len(t, rep.RTOGaps, 3)
	for _, g := range rep.RTOGaps {
		assert.Equal(t, "erp", g.ResourceID)
		assert.Equal(t, models.ObjectiveRTO, g.Objective)
		assert.Equal(t, 44.0, g.Gap)
	}
	require.Len(t, rep.SinglePointsOfFailure, 1)
	assert.Equal(t, 3, rep.SinglePointsOfFailure[0].ProcessCount)
	assert.Equal(t, []string{"Payroll", "Billing", "Support"}, rep.SinglePointsOfFailure[0].AffectedProcesses)
	assert.Len(t, rep.CascadeImpacts, 1)
	assert.Empty(t, rep.RPOGaps)
	assert.Empty(t, rep.MissingDependencies)

	// passed = (3-3)+(3-0)+(3-0)+max(0,3-1) = 8 of 12
	assert.Equal(t, 67, rep.ReadinessScore)
	assert.Equal(t, 4, rep.CriticalIssues)
	assert.Equal(t, 0, rep.Warnings)
}

func TestEmptySnapshotScoresZero(t *testing.T) {
	rep := Analyze(Input{}, Config{})

	assert.Equal(t, 0, rep.ReadinessScore)
	assert.Empty(t, rep.RTOGaps)
	assert.Empty(t, rep.RecoveryPriority)
	assert.Zero(t, rep.CriticalIssues)
	assert.Zero(t, rep.Warnings)
}

func TestGapsOnlyWhenResourceIsSlower(t *testing.T) {
	processes := []models.Process{
		{ID: "p1", Name: "Payroll", Recovery: models.RecoveryObjective{RTO: models.Hours(24), RPO: models.Hours(1)}},
		{ID: "p2", Name: "Archive"},
	}
	resources := []models.Resource{
		{ID: "db", Name: "DB", Type: models.ResourceData, RTO: &models.Duration{Value: 1, Unit: models.UnitDays}, RPO: &models.Duration{Value: 60, Unit: models.UnitMinutes}},
	}
	links := []models.ProcessResourceLink{
		{ProcessID: "p1", ResourceID: "db"},
		{ProcessID: "p2", ResourceID: "db"},
	}
	rep := Analyze(buildInput(processes, resources, links), Config{})

	assert.Empty(t, rep.RTOGaps)
	assert.Empty(t, rep.RPOGaps)
}

func TestRPOGapsOnlyForDataAndSystems(t *testing.T) {
	processes := []models.Process{
		{ID: "p1", Name: "Payroll", Recovery: models.RecoveryObjective{RPO: models.Hours(1)}},
	}
	resources := []models.Resource{
		{ID: "db", Name: "DB", Type: models.ResourceData, RPO: hours(12)},
		{ID: "erp", Name: "ERP", Type: models.ResourceSystems, RPO: hours(6)},
		{ID: "hq", Name: "HQ", Type: models.ResourceFacilities, RPO: hours(48)},
	}
	links := []models.ProcessResourceLink{
		{ProcessID: "p1", ResourceID: "db"},
		{ProcessID: "p1", ResourceID: "erp"},
		{ProcessID: "p1", ResourceID: "hq"},
	}
	rep := Analyze(buildInput(processes, resources, links), Config{})

	require.Len(t, rep.RPOGaps, 2)
	assert.Equal(t, "db", rep.RPOGaps[0].ResourceID)
	assert.Equal(t, 11.0, rep.RPOGaps[0].Gap)
	assert.Equal(t, "erp", rep.RPOGaps[1].ResourceID)
	assert.Empty(t, rep.RTOGaps)
	assert.Equal(t, 2, rep.Warnings)
}

func TestMissingDependencies(t *testing.T) {
	processes := []models.Process{
		{ID: "p1", Name: "Payroll"},
		{ID: "p2", Name: "Billing"},
		{ID: "p3", Name: "Support"},
	}
	in := Input{
		Processes: processes,
		Coverage: map[string]models.MapCoverage{
			"p1": models.CoverageMapped,
			"p2": models.CoverageSelfOnly,
		},
	}
	missing := MissingDependencies(sortedProcesses(in.Processes), in.Coverage)

	require.Len(t, missing, 2)
	assert.Equal(t, models.MissingDependency{ProcessID: "p2", ProcessName: "Billing", Coverage: models.CoverageSelfOnly}, missing[0])
	assert.Equal(t, models.CoverageNoMap, missing[1].Coverage)
}

func TestRecoveryPriority(t *testing.T) {
	processes := []models.Process{
		{ID: "a", Name: "A", Criticality: models.CriticalityCritical, Recovery: models.RecoveryObjective{RTO: models.Hours(4)}},
		{ID: "b", Name: "B", Criticality: models.CriticalityHigh, Recovery: models.RecoveryObjective{RTO: models.Hours(48)}},
		{ID: "c", Name: "C", Criticality: models.CriticalityLow},
		{ID: "d", Name: "D", Criticality: models.CriticalityMedium, Recovery: models.RecoveryObjective{RTO: models.Hours(72)}},
	}
	scores := map[string]models.ImpactScore{
		"a": {WeightedScore: 3.2},
		"c": {WeightedScore: 4},
	}
	out := RecoveryPriority(processes, scores, 10)

	require.Len(t, out, 4)
	// a: 50 + 16 + 20 = 86, b: 40 + 0 + 10 = 50, c: 20 + 20 = 40, d: 30
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{out[0].ProcessID, out[1].ProcessID, out[2].ProcessID, out[3].ProcessID})
	assert.Equal(t, 86.0, out[0].Score)
	assert.Equal(t, 50.0, out[1].Score)
	assert.Equal(t, 40.0, out[2].Score)
	assert.Equal(t, 30.0, out[3].Score)
	assert.Equal(t, float64(NoRTODisplay), out[2].RTO)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, 4, out[3].Rank)

	assert.Len(t, RecoveryPriority(processes, scores, 2), 2)
}

func TestUrgencyBonus(t *testing.T) {
	assert.Equal(t, 0, UrgencyBonus(nil))
	assert.Equal(t, 20, UrgencyBonus(models.Hours(23.9)))
	assert.Equal(t, 10, UrgencyBonus(models.Hours(24)))
	assert.Equal(t, 10, UrgencyBonus(models.Hours(71)))
	assert.Equal(t, 0, UrgencyBonus(models.Hours(72)))
}

func TestReadinessIsClamped(t *testing.T) {
	assert.Equal(t, 0, Readiness(0, 0, 0, 0, 0))
	assert.Equal(t, 100, Readiness(5, 0, 0, 0, 0))
	assert.Equal(t, 0, Readiness(1, 10, 10, 1, 4))
	assert.Equal(t, 75, Readiness(2, 0, 0, 2, 0))
}

func TestConsistencyFindings(t *testing.T) {
	processes := []models.Process{
		{ID: "p1", Name: "Payroll", Recovery: models.RecoveryObjective{RTO: models.Hours(48), MTPD: models.Hours(24)}},
		{ID: "p2", Name: "Billing", Recovery: models.RecoveryObjective{RTO: models.Hours(4), MTPD: models.Hours(72)}},
		{ID: "p3", Name: "Treasury", Criticality: models.CriticalityCritical},
	}
	scores := map[string]models.ImpactScore{
		"p2": {SuggestedMTPD: &models.SuggestedMTPD{TimelinePointID: "t2", Hours: 24}},
	}
	findings := ConsistencyFindings(processes, scores)

	require.Len(t, findings, 3)
	assert.Equal(t, RuleRTOExceedsMTPD, findings[0].RuleID)
	assert.Equal(t, models.SeverityCritical, findings[0].Severity)
	assert.Equal(t, RuleMTPDAboveSuggested, findings[1].RuleID)
	assert.Equal(t, "p2", findings[1].ProcessID)
	assert.Equal(t, RuleCriticalWithoutRTO, findings[2].RuleID)

	rep := Analyze(Input{Processes: processes, Scores: scores}, Config{})
	// 1 critical finding; 3 missing maps + 2 warning findings
	assert.Equal(t, 1, rep.CriticalIssues)
	assert.Equal(t, 5, rep.Warnings)
}

func TestSummarizeCountsAppendedFindings(t *testing.T) {
	rep := models.BCDRReport{
		RTOGaps:  []models.ObjectiveGap{{}},
		RPOGaps:  []models.ObjectiveGap{{}, {}},
		Findings: []models.Finding{{Severity: models.SeverityCritical}, {Severity: models.SeverityWarning}},
	}
	Summarize(&rep)
	assert.Equal(t, 2, rep.CriticalIssues)
	assert.Equal(t, 3, rep.Warnings)
}
