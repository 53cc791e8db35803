package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/export"
	"github.com/piwi3910/macroplace/internal/importer"
)

type sweepOptions struct {
	divisions int
	workers   int
	output    string
}

// sweepCommand creates the sweep command.
func (c *CLI) sweepCommand() *cobra.Command {
	var (
		opts sweepOptions
		sf   settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "sweep <benchmark>...",
		Short: "Refine every benchmark over a grid of objective weights",
		Long: `Refine every benchmark over a grid of objective weights.

The weights (alpha, beta, gamma) run over all triples in steps of
1/divisions that sum to one; each triple is used for both the cost masks
and the evaluation. Scenarios run in parallel starting from the netlist
positions. The results and the best scenario per benchmark are written
to an Excel workbook.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Settings, err = sf.apply(cmd, cfg.Settings); err != nil {
				return err
			}
			if opts.divisions <= 0 {
				return fmt.Errorf("--divisions must be positive, got %d", opts.divisions)
			}
			if opts.output == "" {
				opts.output = filepath.Join(cfg.ResultDir, "sweep.xlsx")
			}

			start := time.Now()
			inputs := make(map[string]engine.SweepInput, len(args))
			for _, name := range args {
				in, err := c.loadInput(cfg, name)
				if err != nil {
					return err
				}
				inputs[name] = engine.SweepInput{
					DB:     in.Design.DB,
					Flow:   in.Flow,
					Region: in.Region,
					Bench:  in.Bench,
					Seed:   importer.SeedFromDB(in.Design.DB, in.Bench.GridSize),
				}
			}

			scenarios := engine.BuildSweepScenarios(cfg.Settings, args, engine.SimplexWeights(opts.divisions))
			c.Logger.Info("sweeping", "benchmarks", len(args), "scenarios", len(scenarios), "workers", opts.workers)

			results, err := engine.Sweep(cmd.Context(), inputs, scenarios, opts.workers, c.Logger)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(opts.output), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(opts.output), err)
			}
			if err := export.ExportSweepExcel(opts.output, results); err != nil {
				return err
			}

			var failed int
			for _, r := range results {
				if r.Err != nil {
					failed++
					printError("%s: %v", r.Scenario.Name, r.Err)
				}
			}
			printSuccess("sweep finished in %s: %d scenarios, %d failed",
				time.Since(start).Round(time.Millisecond), len(results), failed)
			for _, best := range export.BestPerBenchmark(results) {
				printEval(best.Scenario.Name, best.Eval)
			}
			printFile(opts.output)
			printNewline()
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().IntVar(&opts.divisions, "divisions", 10, "weight steps per unit")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel scenarios (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "workbook path (default: <result_dir>/sweep.xlsx)")

	return cmd
}
