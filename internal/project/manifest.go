package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/macroplace/internal/model"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = "1.0.0"

// Manifest summarizes one placement run: what was run, with which
// settings, and where its outputs went.
type Manifest struct {
	Version    string           `json:"version"`
	ID         string           `json:"id"`
	Command    string           `json:"command"`
	CreatedAt  string           `json:"created_at"`
	Duration   string           `json:"duration"`
	Benchmark  model.Benchmark  `json:"benchmark"`
	Settings   model.Settings   `json:"settings"`
	Seed       model.EvalRecord `json:"seed"`
	Best       model.EvalRecord `json:"best"`
	Iterations int              `json:"iterations"`
	Accepted   int              `json:"accepted"`
	Files      []string         `json:"files"`
}

// NewManifest starts a manifest with a fresh run ID.
func NewManifest(command string, bench model.Benchmark, settings model.Settings) Manifest {
	return Manifest{
		Version:   ManifestVersion,
		ID:        uuid.New().String(),
		Command:   command,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Benchmark: bench,
		Settings:  settings,
		Files:     []string{},
	}
}

// ShortID returns the first eight characters of the run ID.
func (m Manifest) ShortID() string {
	if len(m.ID) < 8 {
		return m.ID
	}
	return m.ID[:8]
}

// SaveManifest writes m as indented JSON.
func SaveManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by SaveManifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("invalid manifest: missing version field")
	}
	if m.Files == nil {
		m.Files = []string{}
	}
	return m, nil
}
