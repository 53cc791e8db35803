package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/macroplace/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultSettings()
	if cfg.Settings.Iterations != defaults.Iterations {
		t.Errorf("expected default iterations %d, got %d", defaults.Iterations, cfg.Settings.Iterations)
	}
	if len(cfg.Benchmarks) != len(model.DefaultBenchmarks()) {
		t.Errorf("expected built-in benchmark table, got %d entries", len(cfg.Benchmarks))
	}
	if cfg.ResultDir != "results" {
		t.Errorf("expected result dir 'results', got %s", cfg.ResultDir)
	}
}

func TestLoadConfigTOMLPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	data := `result_dir = "out"

[settings]
iterations = 200
seed = 11

[settings.mask]
alpha = 1.0
beta = 0.0
gamma = 0.0

[benchmarks.adaptec1]
grid_num = 100

[benchmarks.custom]
grid_num = 32
grid_size = 4.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Settings.Iterations != 200 {
		t.Errorf("expected iterations=200, got %d", cfg.Settings.Iterations)
	}
	if cfg.Settings.Seed != 11 {
		t.Errorf("expected seed=11, got %d", cfg.Settings.Seed)
	}
	if cfg.Settings.Mask.Alpha != 1 || cfg.Settings.Mask.Beta != 0 {
		t.Errorf("expected mask weights (1,0,0), got %v", cfg.Settings.Mask)
	}
	if cfg.Settings.Evaluate != model.DefaultSettings().Evaluate {
		t.Errorf("expected default evaluate weights, got %v", cfg.Settings.Evaluate)
	}
	if cfg.ResultDir != "out" {
		t.Errorf("expected result dir 'out', got %s", cfg.ResultDir)
	}
	if cfg.BenchmarkDir != "benchmarks" {
		t.Errorf("expected default benchmark dir, got %s", cfg.BenchmarkDir)
	}

	a1, err := cfg.Benchmark("adaptec1")
	if err != nil {
		t.Fatalf("Benchmark failed: %v", err)
	}
	if a1.GridNum != 100 || a1.GridSize != 72 || a1.ShiftX != 459 {
		t.Errorf("expected adaptec1 merged with defaults, got %+v", a1)
	}

	custom, err := cfg.Benchmark("custom")
	if err != nil {
		t.Fatalf("Benchmark failed: %v", err)
	}
	if custom.Name != "custom" || custom.GridSize != 4.5 || custom.Ports != model.PortsKeep {
		t.Errorf("unexpected custom benchmark %+v", custom)
	}
}

func TestLoadConfigInvalidWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	data := `{"settings": {"mask": {"alpha": 0, "beta": 0, "gamma": 0}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for all-zero mask weights")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	if err := os.WriteFile(path, []byte("settings = [[["), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	for _, name := range []string{"config.toml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := DefaultConfig()
			cfg.Settings.Iterations = 42
			cfg.Settings.Evaluate = model.Weights{Alpha: 0.5, Beta: 0.25, Gamma: 0.25}
			cfg.FlowDir = "/data/flow"

			if err := SaveConfig(path, cfg); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if loaded.Settings.Iterations != 42 {
				t.Errorf("expected iterations=42, got %d", loaded.Settings.Iterations)
			}
			if loaded.Settings.Evaluate != cfg.Settings.Evaluate {
				t.Errorf("expected evaluate %v, got %v", cfg.Settings.Evaluate, loaded.Settings.Evaluate)
			}
			if loaded.FlowDir != "/data/flow" {
				t.Errorf("expected flow dir /data/flow, got %s", loaded.FlowDir)
			}
			b, err := loaded.Benchmark("bigblue2")
			if err != nil {
				t.Fatalf("Benchmark failed: %v", err)
			}
			if b != model.DefaultBenchmarks()["bigblue2"] {
				t.Errorf("expected bigblue2 to round-trip, got %+v", b)
			}
		})
	}
}

func TestConfigUnknownBenchmark(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.Benchmark("nope"); err == nil {
		t.Error("expected an error for an unknown benchmark")
	}
}

func TestConfigFlowPath(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.FlowDir = dir

	if got := cfg.FlowPath("tiny"); got != "" {
		t.Errorf("expected no flow path, got %s", got)
	}

	csvPath := filepath.Join(dir, "tiny.csv")
	if err := os.WriteFile(csvPath, []byte(",A\nA,0\n"), 0644); err != nil {
		t.Fatalf("failed to write flow: %v", err)
	}
	if got := cfg.FlowPath("tiny"); got != csvPath {
		t.Errorf("expected %s, got %s", csvPath, got)
	}
}
