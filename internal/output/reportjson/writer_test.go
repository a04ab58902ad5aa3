package reportjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/pkg/models"
)

func TestWriterAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reports.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteReports([]*models.Report{{ReportID: "r1"}, nil, {ReportID: "r2"}}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	w, err = NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteReports([]*models.Report{{ReportID: "r3", OrganizationID: "acme"}}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r models.Report
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		ids = append(ids, r.ReportID)
	}
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	require.NoError(t, w.WriteReports([]*models.Report{{ReportID: "r1", BCDR: models.BCDRReport{ReadinessScore: 80}}}))
	require.NoError(t, w.Close())

	assert.Contains(t, buf.String(), `"readiness_score":80`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestNewWriterWrapsDirectoryErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewWriter(filepath.Join(blocker, "out", "reports.jsonl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}
