package engine

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/macroplace/internal/model"
)

// SweepScenario is one cell of a hyperparameter sweep.
type SweepScenario struct {
	Name      string
	Benchmark string
	Settings  model.Settings
}

// SweepInput is the read-only data of one benchmark, shared by every
// scenario that runs on it.
type SweepInput struct {
	DB     *model.DB
	Flow   *model.Flow
	Region *model.Region
	Bench  model.Benchmark
	Seed   *model.Placement
}

// SweepResult holds the outcome of a single scenario.
type SweepResult struct {
	Scenario SweepScenario
	Eval     model.EvalRecord
	Seed     model.EvalRecord
	Accepted int
	Duration time.Duration
	Err      error
}

// SimplexWeights enumerates every (alpha, beta, gamma) with components in
// steps of 1/divisions summing to one. Ten divisions give 66 points.
func SimplexWeights(divisions int) []model.Weights {
	if divisions <= 0 {
		return nil
	}
	var out []model.Weights
	d := float64(divisions)
	for a := 0; a <= divisions; a++ {
		for b := 0; a+b <= divisions; b++ {
			g := divisions - a - b
			out = append(out, model.Weights{Alpha: float64(a) / d, Beta: float64(b) / d, Gamma: float64(g) / d})
		}
	}
	return out
}

// BuildSweepScenarios crosses benchmarks with weight triples. Each
// scenario uses the triple for both the masks and the evaluation.
func BuildSweepScenarios(base model.Settings, benchmarks []string, weights []model.Weights) []SweepScenario {
	scenarios := make([]SweepScenario, 0, len(benchmarks)*len(weights))
	for _, bench := range benchmarks {
		for _, w := range weights {
			s := base
			s.Mask = w
			s.Evaluate = w
			scenarios = append(scenarios, SweepScenario{
				Name:      fmt.Sprintf("%s %.1f-%.1f-%.1f", bench, w.Alpha, w.Beta, w.Gamma),
				Benchmark: bench,
				Settings:  s,
			})
		}
	}
	return scenarios
}

// Sweep runs every scenario on a bounded pool of workers; each refinement
// stays single-threaded. Per-scenario failures are reported in the result
// and do not stop the sweep. Results keep the order of scenarios.
func Sweep(ctx context.Context, inputs map[string]SweepInput, scenarios []SweepScenario, workers int, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]SweepResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runScenario(ctx, inputs, sc)
			if results[i].Err != nil {
				logger.Warn("scenario failed", "scenario", sc.Name, "err", results[i].Err)
			} else {
				logger.Info("scenario done", "scenario", sc.Name, "value", results[i].Eval.Value, "duration", results[i].Duration.Round(time.Millisecond))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runScenario(ctx context.Context, inputs map[string]SweepInput, sc SweepScenario) SweepResult {
	res := SweepResult{Scenario: sc}
	in, ok := inputs[sc.Benchmark]
	if !ok {
		res.Err = fmt.Errorf("%q: %w", sc.Benchmark, model.ErrUnknownBenchmark)
		return res
	}

	start := time.Now()
	refiner, err := NewRefiner(in.DB, in.Flow, in.Region, in.Bench, sc.Settings)
	if err != nil {
		res.Err = err
		return res
	}
	out, err := refiner.Run(ctx, in.Seed)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.Eval = out.Eval
	res.Seed = out.Trace[0].Eval()
	res.Accepted = out.Accepted
	return res
}
