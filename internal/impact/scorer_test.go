package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/pkg/models"
)

func testCategories() []models.ImpactCategory {
	return []models.ImpactCategory{
		{ID: "financial", Name: "Financial", Weight: 60},
		{ID: "legal", Name: "Legal", Weight: 40},
	}
}

func testTimeline() []models.TimelinePoint {
	// Deliberately out of order; the scorer sorts by offset.
	return []models.TimelinePoint{
		{ID: "1w", Label: "1 week", Duration: models.Duration{Value: 1, Unit: models.UnitWeeks}},
		{ID: "4h", Label: "4 hours", Duration: models.Duration{Value: 4, Unit: models.UnitHours}},
		{ID: "30m", Label: "30 minutes", Duration: models.Duration{Value: 30, Unit: models.UnitMinutes}},
		{ID: "1d", Label: "1 day", Duration: models.Duration{Value: 1, Unit: models.UnitDays}},
	}
}

func TestWeightedScoreUsesWorstCasePerCategory(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{})
	matrix := map[string]map[string]int{
		"4h": {"financial": 2, "legal": 1},
		"1d": {"financial": 4, "legal": 2},
		"1w": {"financial": 3, "legal": 2},
	}

	got := s.Score(models.Process{ID: "p1", Name: "Payroll"}, matrix)
	assert.Equal(t, map[string]int{"financial": 4, "legal": 2}, got.MaxImpactPerCategory)
	assert.InDelta(t, 3.2, got.WeightedScore, 1e-9)
	assert.Equal(t, "p1", got.ProcessID)
}

func TestAllZeroMatrixHasNoScoreAndNoMTPD(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{Threshold: 1})
	matrix := map[string]map[string]int{
		"30m": {"financial": 0, "legal": 0},
		"1d":  {"financial": 0, "legal": 0},
	}

	got := s.Score(models.Process{ID: "p1"}, matrix)
	assert.Zero(t, got.WeightedScore)
	assert.Nil(t, got.SuggestedMTPD)
}

func TestUnassessedProcessYieldsZeroVector(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{})

	got := s.Score(models.Process{ID: "p1"}, nil)
	assert.Equal(t, map[string]int{"financial": 0, "legal": 0}, got.MaxImpactPerCategory)
	assert.Zero(t, got.WeightedScore)
	assert.Nil(t, got.SuggestedMTPD)
}

func TestSuggestedMTPDReturnsEarliestBreachEvenIfLaterPointsDip(t *testing.T) {
	matrix := map[string]map[string]int{
		"30m": {"financial": 1},
		"4h":  {"legal": 3},
		"1d":  {"financial": 1},
		"1w":  {"financial": 5},
	}

	got := SuggestedMTPD(testTimeline(), testCategories(), matrix, 3)
	require.NotNil(t, got)
	assert.Equal(t, "4h", got.TimelinePointID)
	assert.Equal(t, 4.0, got.Hours)
	assert.Equal(t, models.UnitHours, got.Unit)
}

func TestSuggestedMTPDIsMonotonicInThreshold(t *testing.T) {
	matrix := map[string]map[string]int{
		"30m": {"financial": 1},
		"4h":  {"financial": 2, "legal": 3},
		"1d":  {"financial": 4},
		"1w":  {"legal": 5},
	}

	var prev *models.SuggestedMTPD
	for threshold := 5; threshold >= 1; threshold-- {
		got := SuggestedMTPD(testTimeline(), testCategories(), matrix, threshold)
		require.NotNil(t, got, "threshold %d", threshold)
		if prev != nil {
			assert.LessOrEqual(t, got.Hours, prev.Hours, "threshold %d", threshold)
		}
		prev = got
	}
}

func TestScoresStayWithinSeverityBounds(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{})
	matrix := map[string]map[string]int{
		"4h": {"financial": 9, "legal": -2},
		"1d": {"financial": 7, "legal": 3},
	}

	got := s.Score(models.Process{ID: "p1"}, matrix)
	for id, v := range got.MaxImpactPerCategory {
		assert.GreaterOrEqual(t, v, 0, id)
		assert.LessOrEqual(t, v, 5, id)
	}
	assert.GreaterOrEqual(t, got.WeightedScore, 0.0)
	assert.LessOrEqual(t, got.WeightedScore, 5.0)
	assert.InDelta(t, 4.2, got.WeightedScore, 1e-9)
}

func TestInvalidWeightsSkipWeighting(t *testing.T) {
	categories := []models.ImpactCategory{
		{ID: "financial", Weight: 60},
		{ID: "legal", Weight: 30},
	}
	s := NewScorer(categories, testTimeline(), Config{})
	require.False(t, s.Weighted())

	got := s.Score(models.Process{ID: "p1"}, map[string]map[string]int{"1d": {"financial": 5}})
	assert.Zero(t, got.WeightedScore)
	assert.Equal(t, 5, got.MaxImpactPerCategory["financial"])
	require.NotNil(t, got.SuggestedMTPD)
}

func TestNoCategoriesScoresZero(t *testing.T) {
	assert.Zero(t, WeightedScore(nil, nil))
	assert.False(t, ValidWeights(nil))

	s := NewScorer(nil, testTimeline(), Config{})
	got := s.Score(models.Process{ID: "p1"}, map[string]map[string]int{"1d": {"financial": 5}})
	assert.Empty(t, got.MaxImpactPerCategory)
	assert.Zero(t, got.WeightedScore)
	assert.Nil(t, got.SuggestedMTPD)
}

func TestScoreAllKeysByProcess(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{})
	processes := []models.Process{{ID: "p1"}, {ID: "p2"}}
	assessments := []models.ImpactAssessment{
		{ProcessID: "p1", Matrix: map[string]map[string]int{"1d": {"financial": 5, "legal": 5}}},
	}

	got := s.ScoreAll(processes, assessments)
	require.Len(t, got, 2)
	assert.Equal(t, 5.0, got["p1"].WeightedScore)
	assert.Zero(t, got["p2"].WeightedScore)
}

func TestRowsOfUnknownTimelinePointsAreIgnored(t *testing.T) {
	s := NewScorer(testCategories(), testTimeline(), Config{Threshold: 3})
	matrix := map[string]map[string]int{
		"4h": {"financial": 1, "legal": 1},
		"2w": {"financial": 5, "legal": 5},
	}

	got := s.Score(models.Process{ID: "p1"}, matrix)
	assert.Equal(t, map[string]int{"financial": 1, "legal": 1}, got.MaxImpactPerCategory)
	assert.InDelta(t, 1.0, got.WeightedScore, 1e-9)
	assert.Nil(t, got.SuggestedMTPD)
}
