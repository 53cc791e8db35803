package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/macroplace/internal/importer"
	"github.com/piwi3910/macroplace/internal/model"
)

// Config is a run configuration: hyperparameters, the benchmark grid
// table and the directories benchmarks are read from and results written to.
type Config struct {
	Settings     model.Settings             `json:"settings" toml:"settings"`
	Benchmarks   map[string]model.Benchmark `json:"benchmarks" toml:"benchmarks"`
	BenchmarkDir string                     `json:"benchmark_dir" toml:"benchmark_dir"` // Holds <name>/<name>.nodes|.nets|.pl
	FlowDir      string                     `json:"flow_dir" toml:"flow_dir"`           // Holds <name>.csv or <name>.xlsx
	ResultDir    string                     `json:"result_dir" toml:"result_dir"`
}

// fileConfig mirrors Config for decoding so benchmark entries can be
// merged field by field into the built-in table.
type fileConfig struct {
	Settings     model.Settings             `json:"settings" toml:"settings"`
	Benchmarks   map[string]model.Benchmark `json:"benchmarks" toml:"benchmarks"`
	BenchmarkDir string                     `json:"benchmark_dir" toml:"benchmark_dir"`
	FlowDir      string                     `json:"flow_dir" toml:"flow_dir"`
	ResultDir    string                     `json:"result_dir" toml:"result_dir"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Settings:     model.DefaultSettings(),
		Benchmarks:   model.DefaultBenchmarks(),
		BenchmarkDir: "benchmarks",
		FlowDir:      "flow",
		ResultDir:    "results",
	}
}

// DefaultConfigDir returns the default directory for configuration.
// On all platforms this is ~/.macroplace/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".macroplace")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// LoadConfig reads a configuration from path. Files ending in .json are
// JSON, everything else TOML. Fields missing from the file keep their
// defaults; benchmark entries override the built-in entry of the same
// name field by field. If the file does not exist, it returns
// DefaultConfig with no error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	file := fileConfig{Settings: cfg.Settings}
	if isJSON(path) {
		err = json.Unmarshal(data, &file)
	} else {
		err = toml.Unmarshal(data, &file)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Settings = file.Settings
	for name, b := range file.Benchmarks {
		cfg.Benchmarks[name] = mergeBenchmark(cfg.Benchmarks[name], b, name)
	}
	if file.BenchmarkDir != "" {
		cfg.BenchmarkDir = file.BenchmarkDir
	}
	if file.FlowDir != "" {
		cfg.FlowDir = file.FlowDir
	}
	if file.ResultDir != "" {
		cfg.ResultDir = file.ResultDir
	}

	if err := cfg.Settings.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func mergeBenchmark(base, over model.Benchmark, name string) model.Benchmark {
	base.Name = name
	if over.GridNum != 0 {
		base.GridNum = over.GridNum
	}
	if over.GridSize != 0 {
		base.GridSize = over.GridSize
	}
	if over.ShiftX != 0 {
		base.ShiftX = over.ShiftX
	}
	if over.ShiftY != 0 {
		base.ShiftY = over.ShiftY
	}
	if over.Ports != "" {
		base.Ports = over.Ports
	}
	if over.BoundaryRatio != 0 {
		base.BoundaryRatio = over.BoundaryRatio
	}
	if base.Ports == "" {
		base.Ports = model.PortsKeep
	}
	return base
}

// SaveConfig persists cfg to path, creating missing parent directories.
// The format follows the file extension as in LoadConfig.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	if isJSON(path) {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	} else {
		err = toml.NewEncoder(f).Encode(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}

// Benchmark looks up a benchmark in the configured table.
func (c Config) Benchmark(name string) (model.Benchmark, error) {
	return model.LookupBenchmark(c.Benchmarks, name)
}

// BenchmarkPath returns the directory holding the bookshelf files of name.
func (c Config) BenchmarkPath(name string) string {
	return filepath.Join(c.BenchmarkDir, name)
}

// FlowPath returns the flow matrix of name, preferring a workbook over a
// CSV file. It returns "" when neither exists.
func (c Config) FlowPath(name string) string {
	for _, ext := range []string{".xlsx", ".csv"} {
		path := filepath.Join(c.FlowDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ResultPath returns the result directory of one benchmark run.
func (c Config) ResultPath(name string) string {
	return filepath.Join(c.ResultDir, name)
}

// Input bundles everything the engine needs for one benchmark.
type Input struct {
	Bench    model.Benchmark
	Design   *importer.Design
	Flow     *model.Flow
	Region   *model.Region
	Warnings []string
}

// LoadInput reads the netlist and flow matrix of a benchmark and builds
// its regularity region. A missing flow matrix yields an empty flow graph
// and a warning.
func (c Config) LoadInput(name string) (*Input, error) {
	bench, err := c.Benchmark(name)
	if err != nil {
		return nil, err
	}
	design, err := importer.LoadBenchmark(c.BenchmarkPath(name), bench)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	in := &Input{Bench: bench, Design: design, Warnings: design.Warnings}
	in.Region = model.NewRegion(design.DB, c.Settings.CoreScale, c.Settings.BoundaryScale)

	path := c.FlowPath(name)
	if path == "" {
		in.Flow = model.NewFlow()
		in.Warnings = append(in.Warnings, fmt.Sprintf("no flow matrix for %s in %s", name, c.FlowDir))
		return in, nil
	}
	res := importer.ImportFlow(path, c.Settings.FlowThreshold)
	if !res.OK() {
		return nil, fmt.Errorf("failed to load flow %s: %s", path, strings.Join(res.Errors, "; "))
	}
	in.Flow = res.Flow
	in.Warnings = append(in.Warnings, res.Warnings...)
	return in, nil
}
