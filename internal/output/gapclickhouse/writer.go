// Package gapclickhouse stores recovery objective gaps in ClickHouse.
package gapclickhouse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"continuitygraph/pkg/models"
)

// DefaultTable receives one row per gap.
const DefaultTable = "continuity_gaps"

// clickhouseTime is the DateTime input format accepted by JSONEachRow.
const clickhouseTime = "2006-01-02 15:04:05"

// Config configures the ClickHouse HTTP writer.
type Config struct {
	URL      string
	Database string
	Table    string
	Username string
	Password string
	Timeout  time.Duration
	Headers  map[string]string
}

// Row is one RTO or RPO gap of one report.
type Row struct {
	ReportID       string  `json:"report_id"`
	OrganizationID string  `json:"organization_id"`
	GeneratedAt    string  `json:"generated_at"`
	Objective      string  `json:"objective"`
	ProcessID      string  `json:"process_id"`
	ProcessName    string  `json:"process_name"`
	ProcessHours   float64 `json:"process_hours"`
	ResourceID     string  `json:"resource_id"`
	ResourceName   string  `json:"resource_name"`
	ResourceType   string  `json:"resource_type"`
	ResourceHours  float64 `json:"resource_hours"`
	GapHours       float64 `json:"gap_hours"`
	ReadinessScore int     `json:"readiness_score"`
}

// Writer sends gap rows to ClickHouse via HTTP JSONEachRow.
type Writer struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// NewWriter creates a ClickHouse HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	q := fmt.Sprintf("INSERT INTO %s.%s FORMAT JSONEachRow", quoteIdent(cfg.Database), quoteIdent(cfg.Table))
	endpoint := strings.TrimRight(cfg.URL, "/") + "/?query=" + url.QueryEscape(q)

	headers := make(map[string]string, len(cfg.Headers)+2)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Username != "" {
		headers["X-ClickHouse-User"] = cfg.Username
	}
	if cfg.Password != "" {
		headers["X-ClickHouse-Key"] = cfg.Password
	}

	return &Writer{
		endpoint: endpoint,
		headers:  headers,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Rows flattens the RTO and RPO gaps of a report.
func Rows(r *models.Report) []Row {
	if r == nil {
		return nil
	}
	gaps := make([]models.ObjectiveGap, 0, len(r.BCDR.RTOGaps)+len(r.BCDR.RPOGaps))
	gaps = append(gaps, r.BCDR.RTOGaps...)
	gaps = append(gaps, r.BCDR.RPOGaps...)

	rows := make([]Row, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, Row{
			ReportID:       r.ReportID,
			OrganizationID: r.OrganizationID,
			GeneratedAt:    r.GeneratedAt.UTC().Format(clickhouseTime),
			Objective:      g.Objective,
			ProcessID:      g.ProcessID,
			ProcessName:    g.ProcessName,
			ProcessHours:   g.ProcessHours,
			ResourceID:     g.ResourceID,
			ResourceName:   g.ResourceName,
			ResourceType:   g.ResourceType,
			ResourceHours:  g.ResourceHours,
			GapHours:       g.Gap,
			ReadinessScore: r.BCDR.ReadinessScore,
		})
	}
	return rows
}

// WriteReports inserts the gaps of a batch of reports. Reports without gaps
// produce no request.
func (w *Writer) WriteReports(reports []*models.Report) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	n := 0
	for _, r := range reports {
		for _, row := range Rows(r) {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("failed to marshal gap row: %w", err)
			}
			n++
		}
	}
	if n == 0 {
		return nil
	}

	req, err := http.NewRequest(http.MethodPost, w.endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("clickhouse request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("clickhouse request failed with status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// Close releases resources.
func (w *Writer) Close() error {
	return nil
}

func quoteIdent(v string) string {
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "`", "")
	return "`" + v + "`"
}
