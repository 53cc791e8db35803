package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/project"
)

type refineOptions struct {
	seed    string
	shift   bool
	iterate bool
	output  outputFlags
}

// refineCommand creates the refine command.
func (c *CLI) refineCommand() *cobra.Command {
	var (
		opts refineOptions
		sf   settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "refine <benchmark>",
		Short: "Refine a seed placement with swap-based evolutionary search",
		Long: `Refine a seed placement with swap-based evolutionary search.

Each iteration swaps two macros of the best placement, rebuilds the
placement with the cost-mask placer and keeps it when it is legal and
scores better. The seed is read from --seed (.pl, placement .csv or .dxf)
or taken from the benchmark's netlist positions.

With --iterate the placer is instead re-run on its own output until it
produces an illegal placement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Settings, err = sf.apply(cmd, cfg.Settings); err != nil {
				return err
			}
			if opts.output.dir == "" {
				opts.output.dir = cfg.ResultPath(args[0])
			}
			return c.runRefine(cmd.Context(), cfg, args[0], opts)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&opts.seed, "seed-placement", "s", "", "seed placement (.pl, .csv or .dxf)")
	cmd.Flags().BoolVar(&opts.shift, "shift", false, "apply the benchmark seed shift to .pl macro coordinates")
	cmd.Flags().BoolVar(&opts.iterate, "iterate", false, "re-run the placer on its own output instead of swapping")
	registerOutputFlags(cmd, &opts.output)

	return cmd
}

func registerOutputFlags(cmd *cobra.Command, o *outputFlags) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", "", "result directory (default: <result_dir>/<benchmark>)")
	cmd.Flags().BoolVar(&o.pdf, "pdf", false, "write a PDF report")
	cmd.Flags().BoolVar(&o.dxf, "dxf", false, "write a DXF drawing")
	cmd.Flags().BoolVar(&o.workbook, "xlsx", false, "write the trace as an Excel workbook")
	cmd.Flags().BoolVar(&o.curve, "plot", false, "write a convergence plot")
}

func (c *CLI) runRefine(ctx context.Context, cfg project.Config, name string, opts refineOptions) error {
	start := time.Now()
	in, err := c.loadInput(cfg, name)
	if err != nil {
		return err
	}
	seed, err := c.loadPlacement(in, opts.seed, opts.shift)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	db := in.Design.DB
	refiner, err := engine.NewRefiner(db, in.Flow, in.Region, in.Bench, cfg.Settings)
	if err != nil {
		return err
	}
	refiner.Logger = c.Logger

	rec, err := project.NewRecorder(opts.output.dir)
	if err != nil {
		return err
	}
	refiner.Observer = rec

	command := "refine"
	run := refiner.Run
	if opts.iterate {
		command = "iterate"
		run = refiner.Iterate
	}
	c.Logger.Info("refining", "benchmark", name, "macros", len(db.Macros()), "ports", len(db.Ports()),
		"iterations", cfg.Settings.Iterations, "mode", command)

	out, runErr := run(ctx, seed)
	if out == nil {
		rec.Close()
		return runErr
	}

	m := project.NewManifest(command, in.Bench, cfg.Settings)
	if err := c.writeOutputs(in, out, rec, m, start, opts.output); err != nil {
		return err
	}
	return runErr
}
