package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/macroplace/internal/model"
)

func TestSaveAndLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "manifest.json")
	bench := model.DefaultBenchmarks()["adaptec3"]

	m := NewManifest("refine", bench, model.DefaultSettings())
	m.Seed = model.EvalRecord{HPWL: 100, Dataflow: 40}
	m.Best = model.EvalRecord{Value: -1.5, HPWL: 80, Dataflow: 30}
	m.Iterations = 10
	m.Accepted = 3
	m.Files = append(m.Files, "curve.csv", "placement.csv")

	if err := SaveManifest(path, m); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}
	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	if loaded.ID != m.ID {
		t.Errorf("expected ID %s, got %s", m.ID, loaded.ID)
	}
	if loaded.Version != ManifestVersion {
		t.Errorf("expected version %s, got %s", ManifestVersion, loaded.Version)
	}
	if loaded.Benchmark != bench {
		t.Errorf("expected benchmark %+v, got %+v", bench, loaded.Benchmark)
	}
	if loaded.Best != m.Best {
		t.Errorf("expected best %v, got %v", m.Best, loaded.Best)
	}
	if len(loaded.Files) != 2 {
		t.Errorf("expected 2 files, got %v", loaded.Files)
	}
}

func TestNewManifestUniqueID(t *testing.T) {
	a := NewManifest("refine", model.Benchmark{}, model.DefaultSettings())
	b := NewManifest("refine", model.Benchmark{}, model.DefaultSettings())
	if a.ID == b.ID {
		t.Error("expected distinct run IDs")
	}
	if len(a.ShortID()) != 8 {
		t.Errorf("expected 8 character short ID, got %q", a.ShortID())
	}
}

func TestLoadManifestMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(`{"id": "x"}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected an error for a manifest without version")
	}
}

func TestLoadManifestInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected a parse error")
	}
}
