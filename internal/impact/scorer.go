// Package impact turns temporal impact matrices into per-process criticality scores.
package impact

import (
	"math"
	"sort"

	"continuitygraph/pkg/models"
)

const (
	// DefaultThreshold is the severity at which a timeline point suggests an MTPD.
	DefaultThreshold = 3
	maxSeverity      = 5
	weightTotal      = 100.0
	weightTolerance  = 0.01
)

// Config controls impact scoring.
type Config struct {
	Threshold int
}

// Scorer computes impact scores against one organization's categories and timeline.
type Scorer struct {
	categories []models.ImpactCategory
	points     []models.TimelinePoint
	threshold  int
	weighted   bool
}

// NewScorer creates a scorer. Timeline points are ordered by offset ascending.
func NewScorer(categories []models.ImpactCategory, points []models.TimelinePoint, cfg Config) *Scorer {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if threshold > maxSeverity {
		threshold = maxSeverity
	}

	return &Scorer{
		categories: append([]models.ImpactCategory(nil), categories...),
		points:     OrderTimeline(points),
		threshold:  threshold,
		weighted:   ValidWeights(categories),
	}
}

// Weighted reports whether category weights were valid for weighting.
func (s *Scorer) Weighted() bool {
	return s.weighted
}

// ValidWeights reports whether category weights sum to 100.
func ValidWeights(categories []models.ImpactCategory) bool {
	if len(categories) == 0 {
		return false
	}
	sum := 0.0
	for _, c := range categories {
		if c.Weight < 0 {
			return false
		}
		sum += c.Weight
	}
	return math.Abs(sum-weightTotal) <= weightTolerance
}

// Score computes the impact score of one process. A nil matrix yields a zero score.
func (s *Scorer) Score(process models.Process, matrix map[string]map[string]int) models.ImpactScore {
	maxImpact := MaxImpactPerCategory(s.points, s.categories, matrix)
	score := models.ImpactScore{
		ProcessID:            process.ID,
		ProcessName:          process.Name,
		MaxImpactPerCategory: maxImpact,
		SuggestedMTPD:        SuggestedMTPD(s.points, s.categories, matrix, s.threshold),
	}
	if s.weighted {
		score.WeightedScore = WeightedScore(s.categories, maxImpact)
	}
	return score
}

// ScoreAll scores every process, keyed by process id.
func (s *Scorer) ScoreAll(processes []models.Process, assessments []models.ImpactAssessment) map[string]models.ImpactScore {
	matrices := make(map[string]map[string]map[string]int, len(assessments))
	for _, a := range assessments {
		matrices[a.ProcessID] = a.Matrix
	}
	out := make(map[string]models.ImpactScore, len(processes))
	for _, p := range processes {
		out[p.ID] = s.Score(p, matrices[p.ID])
	}
	return out
}

// MaxImpactPerCategory returns the worst severity per category over the given
// timeline points. Categories missing from the matrix default to 0 and rows
// keyed by unknown points are ignored.
func MaxImpactPerCategory(points []models.TimelinePoint, categories []models.ImpactCategory, matrix map[string]map[string]int) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.ID] = 0
	}
	for _, p := range points {
		row := matrix[p.ID]
		for _, c := range categories {
			v := clampSeverity(row[c.ID])
			if v > out[c.ID] {
				out[c.ID] = v
			}
		}
	}
	return out
}

// WeightedScore is sum(max[c]*weight[c]) / sum(weight[c]), rounded to 2 decimals.
func WeightedScore(categories []models.ImpactCategory, maxImpact map[string]int) float64 {
	var num, den float64
	for _, c := range categories {
		if c.Weight <= 0 {
			continue
		}
		num += float64(maxImpact[c.ID]) * c.Weight
		den += c.Weight
	}
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

// SuggestedMTPD returns the earliest point, in ascending time order, at which any
// category reaches threshold. Later points are not considered once a breach is found.
func SuggestedMTPD(points []models.TimelinePoint, categories []models.ImpactCategory, matrix map[string]map[string]int, threshold int) *models.SuggestedMTPD {
	if len(matrix) == 0 || threshold <= 0 {
		return nil
	}
	for _, p := range OrderTimeline(points) {
		row := matrix[p.ID]
		if len(row) == 0 {
			continue
		}
		for _, c := range categories {
			if clampSeverity(row[c.ID]) >= threshold {
				return &models.SuggestedMTPD{
					TimelinePointID: p.ID,
					Label:           p.Label,
					Value:           p.Value,
					Unit:            p.Unit,
					Hours:           p.Hours(),
				}
			}
		}
	}
	return nil
}

// OrderTimeline returns a copy of points sorted by offset ascending, ties by id.
func OrderTimeline(points []models.TimelinePoint) []models.TimelinePoint {
	ordered := append([]models.TimelinePoint(nil), points...)
	sort.SliceStable(ordered, func(i, j int) bool {
		hi, hj := ordered[i].Hours(), ordered[j].Hours()
		if hi != hj {
			return hi < hj
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

func clampSeverity(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxSeverity {
		return maxSeverity
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
