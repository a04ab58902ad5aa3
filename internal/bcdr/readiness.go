package bcdr

import (
	"math"

	"continuitygraph/pkg/models"
)

// Readiness returns round(passed/total*100) over four checks per process,
// clamped to 0..100. Zero processes score 0.
func Readiness(processCount, rtoGaps, rpoGaps, missing, spof int) int {
	if processCount <= 0 {
		return 0
	}
	total := processCount * 4
	passed := (processCount - rtoGaps) +
		(processCount - rpoGaps) +
		(processCount - missing) +
		max(0, processCount-spof)

	score := int(math.Round(float64(passed) / float64(total) * 100))
	return min(100, max(0, score))
}

// Summarize recomputes the issue counters from the report contents. Call it
// again after appending findings.
func Summarize(rep *models.BCDRReport) {
	critical := len(rep.RTOGaps) + len(rep.SinglePointsOfFailure)
	warnings := len(rep.RPOGaps) + len(rep.MissingDependencies)
	for _, f := range rep.Findings {
		if f.Severity == models.SeverityCritical {
			critical++
		} else {
			warnings++
		}
	}
	rep.CriticalIssues = critical
	rep.Warnings = warnings
}
