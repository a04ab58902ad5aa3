package bcdr

import (
	"math"
	"sort"

	"continuitygraph/pkg/models"
)

// NoRTODisplay is shown as the RTO of processes without one.
const NoRTODisplay = 999

// TierScore maps a criticality tier to its priority weight.
func TierScore(criticality string) int {
	switch criticality {
	case models.CriticalityCritical:
		return 5
	case models.CriticalityHigh:
		return 4
	case models.CriticalityMedium:
		return 3
	default:
		return 2
	}
}

// UrgencyBonus rewards short recovery times. A nil RTO earns nothing.
func UrgencyBonus(rto *float64) int {
	switch {
	case rto == nil:
		return 0
	case *rto < 24:
		return 20
	case *rto < 72:
		return 10
	default:
		return 0
	}
}

// RecoveryPriority scores every process as tier*10 + weightedImpact*5 + urgency
// and returns the topN highest, ranked from 1.
func RecoveryPriority(processes []models.Process, scores map[string]models.ImpactScore, topN int) []models.RecoveryPriority {
	out := make([]models.RecoveryPriority, 0, len(processes))
	for _, p := range processes {
		weighted := scores[p.ID].WeightedScore
		rto := float64(NoRTODisplay)
		if p.Recovery.RTO != nil {
			rto = *p.Recovery.RTO
		}
		score := float64(TierScore(p.Criticality)*10) + weighted*5 + float64(UrgencyBonus(p.Recovery.RTO))
		out = append(out, models.RecoveryPriority{
			ProcessID:      p.ID,
			ProcessName:    p.Name,
			Criticality:    p.Criticality,
			RTO:            rto,
			WeightedImpact: weighted,
			Score:          math.Round(score*100) / 100,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProcessID < out[j].ProcessID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
