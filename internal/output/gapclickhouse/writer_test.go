package gapclickhouse

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/pkg/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		ReportID:       "r1",
		OrganizationID: "acme",
		GeneratedAt:    time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		BCDR: models.BCDRReport{
			ReadinessScore: 63,
			RTOGaps: []models.ObjectiveGap{
				{Objective: models.ObjectiveRTO, ProcessID: "p1", ResourceID: "erp", ProcessHours: 4, ResourceHours: 48, Gap: 44},
			},
			RPOGaps: []models.ObjectiveGap{
				{Objective: models.ObjectiveRPO, ProcessID: "p1", ResourceID: "db", ProcessHours: 1, ResourceHours: 12, Gap: 11},
			},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleReport())
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01 12:30:00", rows[0].GeneratedAt)
	assert.Equal(t, models.ObjectiveRTO, rows[0].Objective)
	assert.Equal(t, 44.0, rows[0].GapHours)
	assert.Equal(t, "db", rows[1].ResourceID)
	assert.Equal(t, 63, rows[1].ReadinessScore)
	assert.Nil(t, Rows(nil))
}

func TestWriteReportsInsertsJSONEachRow(t *testing.T) {
	var query, user string
	var rows []Row
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		user = r.Header.Get("X-ClickHouse-User")
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			var row Row
			assert.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
			rows = append(rows, row)
		}
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL + "/", Database: "bia", Username: "writer"})
	require.NoError(t, err)

	require.NoError(t, w.WriteReports([]*models.Report{sampleReport(), {ReportID: "empty"}}))
	assert.Equal(t, "INSERT INTO `bia`.`continuity_gaps` FORMAT JSONEachRow", query)
	assert.Equal(t, "writer", user)
	assert.Len(t, rows, 2)
}

func TestWriteReportsWithoutGapsSendsNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL})
	require.NoError(t, err)
	require.NoError(t, w.WriteReports([]*models.Report{{ReportID: "r1"}}))
	assert.False(t, called)
}

func TestWriteReportsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Code: 60. Table does not exist", http.StatusNotFound)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL})
	require.NoError(t, err)
	err = w.WriteReports([]*models.Report{sampleReport()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Table does not exist")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`gaps`", quoteIdent("ga`ps"))
	assert.Equal(t, "", quoteIdent(""))
}
