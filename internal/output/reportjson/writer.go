// Package reportjson writes reports as JSON lines.
package reportjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"continuitygraph/internal/logger"
	"continuitygraph/pkg/models"
)

// Stdout is the path that selects standard output.
const Stdout = "-"

// Writer outputs reports to a JSON lines file, one report per line.
type Writer struct {
	out     io.Writer
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter opens path for appending, or standard output for "-".
func NewWriter(path string) (*Writer, error) {
	if path == Stdout || path == "" {
		return NewStreamWriter(os.Stdout), nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report output: %w", err)
	}

	logger.Infof("Report JSON writer initialized: %s", path)
	return &Writer{out: f, closer: f, encoder: json.NewEncoder(f)}, nil
}

// NewStreamWriter writes to w and never closes it.
func NewStreamWriter(w io.Writer) *Writer {
	return &Writer{out: w, encoder: json.NewEncoder(w)}
}

// WriteReports writes a batch of reports.
func (w *Writer) WriteReports(reports []*models.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, r := range reports {
		if r == nil {
			continue
		}
		if err := w.encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report %s: %w", r.ReportID, err)
		}
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}
