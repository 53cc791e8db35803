package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknownBenchmark is returned when a benchmark has no grid setting.
	ErrUnknownBenchmark = errors.New("unknown benchmark")
	// ErrInvalidWeights is returned for negative, non-finite or all-zero weights.
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrNodeNotFound is returned when a name does not resolve to a node or record.
	ErrNodeNotFound = errors.New("node not found")
)

// Weights is an (alpha, beta, gamma) triple weighting wirelength,
// dataflow and regularity.
type Weights struct {
	Alpha float64 `json:"alpha" toml:"alpha"`
	Beta  float64 `json:"beta" toml:"beta"`
	Gamma float64 `json:"gamma" toml:"gamma"`
}

// Validate checks that every weight is finite, non-negative, and that at
// least one is positive.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Alpha, w.Beta, w.Gamma} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%v: %w", w, ErrInvalidWeights)
		}
	}
	if w.Alpha+w.Beta+w.Gamma == 0 {
		return fmt.Errorf("%v: all zero: %w", w, ErrInvalidWeights)
	}
	return nil
}

// Normalize scales the weights so they sum to one.
func (w Weights) Normalize() (Weights, error) {
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	s := w.Alpha + w.Beta + w.Gamma
	return Weights{Alpha: w.Alpha / s, Beta: w.Beta / s, Gamma: w.Gamma / s}, nil
}

func (w Weights) String() string {
	return fmt.Sprintf("(%g,%g,%g)", w.Alpha, w.Beta, w.Gamma)
}

// Ranking strategies for the macro visitation order.
const (
	RankMixed = "mixed"
	RankArea  = "area"
)

// Settings holds the hyperparameters of one placement run.
type Settings struct {
	Mask     Weights `json:"mask" toml:"mask"`         // Cost-mask weights used by the placer
	Evaluate Weights `json:"evaluate" toml:"evaluate"` // Objective weights used by the evaluator

	Ranking   string  `json:"ranking" toml:"ranking"`
	RankAlpha float64 `json:"rank_alpha" toml:"rank_alpha"` // Weight of macro area in mixed ranking
	RankBeta  float64 `json:"rank_beta" toml:"rank_beta"`   // Weight of dataflow in mixed ranking

	Iterations        int   `json:"iterations" toml:"iterations"`
	Seed              int64 `json:"seed" toml:"seed"`
	PrioritizeSwapped bool  `json:"prioritize_swapped" toml:"prioritize_swapped"`

	CoreScale     float64 `json:"core_scale" toml:"core_scale"`
	BoundaryScale float64 `json:"boundary_scale" toml:"boundary_scale"`
	FlowThreshold float64 `json:"flow_threshold" toml:"flow_threshold"`

	// Front search
	GuideRounds int `json:"guide_rounds" toml:"guide_rounds"`
	FrontRounds int `json:"front_rounds" toml:"front_rounds"`
}

// DefaultSettings returns the hyperparameters used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Mask:              Weights{Alpha: 0.2, Beta: 0.8, Gamma: 0},
		Evaluate:          Weights{Alpha: 0.2, Beta: 0.8, Gamma: 0},
		Ranking:           RankMixed,
		RankAlpha:         0.8,
		RankBeta:          0.2,
		Iterations:        10,
		Seed:              2027,
		PrioritizeSwapped: true,
		CoreScale:         1.25,
		BoundaryScale:     1.25,
		FlowThreshold:     1e-2,
		GuideRounds:       8,
		FrontRounds:       20,
	}
}

// Validate reports the first configuration problem in s.
func (s Settings) Validate() error {
	if err := s.Mask.Validate(); err != nil {
		return fmt.Errorf("mask weights: %w", err)
	}
	if err := s.Evaluate.Validate(); err != nil {
		return fmt.Errorf("evaluate weights: %w", err)
	}
	if s.Ranking != RankMixed && s.Ranking != RankArea {
		return fmt.Errorf("unknown ranking %q", s.Ranking)
	}
	if s.Ranking == RankMixed && (s.RankAlpha < 0 || s.RankBeta < 0 || s.RankAlpha+s.RankBeta == 0) {
		return fmt.Errorf("rank weights (%g,%g): %w", s.RankAlpha, s.RankBeta, ErrInvalidWeights)
	}
	if s.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", s.Iterations)
	}
	return nil
}

// PortPolicy decides which ports survive netlist preprocessing.
type PortPolicy string

const (
	PortsKeep     PortPolicy = "keep"     // Every port is kept
	PortsBoundary PortPolicy = "boundary" // Only ports near the canvas edge are kept
	PortsDrop     PortPolicy = "drop"     // Every port is deleted
)

// Benchmark holds the grid geometry and preprocessing rules of one design.
type Benchmark struct {
	Name          string     `json:"name" toml:"name"`
	GridNum       int        `json:"grid_num" toml:"grid_num"`
	GridSize      float64    `json:"grid_size" toml:"grid_size"`
	ShiftX        float64    `json:"shift_x" toml:"shift_x"` // Added to seed .pl coordinates from the detailed placer
	ShiftY        float64    `json:"shift_y" toml:"shift_y"`
	Ports         PortPolicy `json:"ports" toml:"ports"`
	BoundaryRatio float64    `json:"boundary_ratio" toml:"boundary_ratio"`
}

// DefaultBenchmarks returns the built-in ISPD2005 grid table.
func DefaultBenchmarks() map[string]Benchmark {
	list := []Benchmark{
		{Name: "adaptec1", GridNum: 161, GridSize: 72, ShiftX: 459, ShiftY: 459, Ports: PortsBoundary},
		{Name: "adaptec2", GridNum: 159, GridSize: 96, ShiftX: 609, ShiftY: 616, Ports: PortsBoundary},
		{Name: "adaptec3", GridNum: 108, GridSize: 216, ShiftX: 36, ShiftY: 58, Ports: PortsDrop},
		{Name: "adaptec4", GridNum: 108, GridSize: 216, ShiftX: 36, ShiftY: 58, Ports: PortsDrop},
		{Name: "bigblue1", GridNum: 161, GridSize: 72, ShiftX: 459, ShiftY: 459, Ports: PortsBoundary},
		{Name: "bigblue2", GridNum: 376, GridSize: 50, ShiftX: 36, ShiftY: 76, Ports: PortsKeep},
		{Name: "bigblue3", GridNum: 234, GridSize: 119, ShiftX: 36, ShiftY: 76, Ports: PortsDrop},
		{Name: "bigblue4", GridNum: 272, GridSize: 119, ShiftX: 36, ShiftY: 58, Ports: PortsDrop},
		{Name: "ariane", GridNum: 357, GridSize: 1, Ports: PortsKeep},
	}
	m := make(map[string]Benchmark, len(list))
	for _, b := range list {
		b.BoundaryRatio = 0.1
		m[b.Name] = b
	}
	return m
}

// LookupBenchmark finds name in table.
func LookupBenchmark(table map[string]Benchmark, name string) (Benchmark, error) {
	b, ok := table[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("%q: %w", name, ErrUnknownBenchmark)
	}
	if b.GridNum <= 0 || b.GridSize <= 0 {
		return Benchmark{}, fmt.Errorf("%q has invalid grid %dx%g: %w", name, b.GridNum, b.GridSize, ErrUnknownBenchmark)
	}
	return b, nil
}

// BenchmarkNames returns the names in table, sorted.
func BenchmarkNames(table map[string]Benchmark) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
