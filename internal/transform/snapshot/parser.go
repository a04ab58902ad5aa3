// Package snapshot decodes and validates analysis snapshots from JSON or YAML payloads.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"continuitygraph/internal/logger"
	"continuitygraph/pkg/models"
)

var (
	// ErrEmptyPayload is returned for an empty or whitespace-only payload.
	ErrEmptyPayload = errors.New("empty snapshot payload")
	// ErrInvalidSnapshot wraps record shape violations.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

var validate = validator.New()

// Parse decodes a payload, choosing JSON when it starts with '{' and YAML otherwise.
func Parse(data []byte) (*models.Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}
	if trimmed[0] == '{' {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseJSON decodes and validates a JSON snapshot.
func ParseJSON(data []byte) (*models.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyPayload
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode json snapshot: %w", err)
	}
	return finish(&snap, data)
}

// ParseYAML decodes and validates a YAML snapshot.
func ParseYAML(data []byte) (*models.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyPayload
	}
	var snap models.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode yaml snapshot: %w", err)
	}
	return finish(&snap, data)
}

// LoadFile reads a snapshot from disk. The extension selects the decoder;
// unknown extensions are sniffed.
func LoadFile(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Encode renders a snapshot as the JSON queue payload.
func Encode(snap *models.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Digest returns the hex sha256 of a raw payload.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Validate checks record shapes and duplicate ids.
func Validate(snap *models.Snapshot) error {
	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if id, ok := duplicateID(snap.Processes, func(p models.Process) string { return p.ID }); ok {
		return fmt.Errorf("%w: duplicate process id %q", ErrInvalidSnapshot, id)
	}
	if id, ok := duplicateID(snap.Resources, func(r models.Resource) string { return r.ID }); ok {
		return fmt.Errorf("%w: duplicate resource id %q", ErrInvalidSnapshot, id)
	}
	if id, ok := duplicateID(snap.Categories, func(c models.ImpactCategory) string { return c.ID }); ok {
		return fmt.Errorf("%w: duplicate category id %q", ErrInvalidSnapshot, id)
	}
	return nil
}

func finish(snap *models.Snapshot, raw []byte) (*models.Snapshot, error) {
	if err := Validate(snap); err != nil {
		return nil, err
	}
	snap.Digest = Digest(raw)
	if len(snap.Processes) == 0 {
		logger.Warnf("Snapshot has no processes (organization=%s)", snap.OrganizationID)
	}
	return snap, nil
}

func duplicateID[T any](items []T, id func(T) string) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := id(it)
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return "", false
}
