// Package alertjson writes readiness alerts as JSON lines.
package alertjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"continuitygraph/internal/logger"
	"continuitygraph/pkg/models"
)

// Stdout selects standard output instead of a file.
const Stdout = "-"

// Writer appends one alert per line. Each batch is flushed before
// WriteAlerts returns.
type Writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer
}

// NewWriter opens path for appending alerts.
func NewWriter(path string) (*Writer, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("alert output path is empty")
	case Stdout:
		return &Writer{buf: bufio.NewWriter(os.Stdout)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create alert directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open alert output: %w", err)
	}
	logger.Infof("Alert JSON writer initialized: %s", path)
	return &Writer{buf: bufio.NewWriter(f), closer: f}, nil
}

// WriteAlerts encodes a batch of alerts. Nil entries are skipped.
func (w *Writer) WriteAlerts(alerts []*models.Alert) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf == nil {
		return fmt.Errorf("alert writer is closed")
	}
	enc := json.NewEncoder(w.buf)
	for _, a := range alerts {
		if a == nil {
			continue
		}
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("failed to encode alert %s: %w", a.AlertID, err)
		}
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush alerts: %w", err)
	}
	return nil
}

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf == nil {
		return nil
	}
	err := w.buf.Flush()
	w.buf = nil
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}
