package bcdr

import (
	"fmt"
	"sort"

	"continuitygraph/pkg/models"
)

// Rule ids of the built-in objective consistency checks.
const (
	RuleRTOExceedsMTPD      = "rto-exceeds-mtpd"
	RuleMTPDAboveSuggested  = "mtpd-above-suggested"
	RuleCriticalWithoutRTO  = "critical-without-rto"
	FindingSourceConsistent = "consistency"
)

// ConsistencyFindings checks each process's own objectives against each other
// and against the impact-derived MTPD.
func ConsistencyFindings(processes []models.Process, scores map[string]models.ImpactScore) []models.Finding {
	var out []models.Finding
	add := func(p models.Process, rule, severity, title, detail string) {
		out = append(out, models.Finding{
			RuleID:      rule,
			Source:      FindingSourceConsistent,
			Severity:    severity,
			ProcessID:   p.ID,
			ProcessName: p.Name,
			Title:       title,
			Detail:      detail,
		})
	}

	for _, p := range processes {
		rec := p.Recovery
		if rec.RTO != nil && rec.MTPD != nil && *rec.RTO > *rec.MTPD {
			add(p, RuleRTOExceedsMTPD, models.SeverityCritical,
				"RTO exceeds MTPD",
				fmt.Sprintf("RTO %gh is longer than the maximum tolerable disruption %gh", *rec.RTO, *rec.MTPD))
		}
		if s, ok := scores[p.ID]; ok && s.SuggestedMTPD != nil && rec.MTPD != nil && *rec.MTPD > s.SuggestedMTPD.Hours {
			add(p, RuleMTPDAboveSuggested, models.SeverityWarning,
				"MTPD later than impact assessment suggests",
				fmt.Sprintf("stated MTPD %gh, impact reaches threshold at %gh", *rec.MTPD, s.SuggestedMTPD.Hours))
		}
		if p.Criticality == models.CriticalityCritical && rec.RTO == nil {
			add(p, RuleCriticalWithoutRTO, models.SeverityWarning,
				"critical process has no RTO", "")
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProcessID != out[j].ProcessID {
			return out[i].ProcessID < out[j].ProcessID
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}
