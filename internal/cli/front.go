package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/project"
)

// frontCommand creates the front command.
func (c *CLI) frontCommand() *cobra.Command {
	var (
		output outputFlags
		guides int
		rounds int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "front <benchmark>",
		Short: "Search a seed placement from random guides",
		Long: `Search a seed placement from random guides.

Macros are scattered over random grid cells and placed with the
wirelength mask only. The best legal guide is then improved with random
swaps, keeping strictly shorter wirelength. The result is written as
<benchmark>.refine.pl for the refine command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("guides") {
				cfg.Settings.GuideRounds = guides
			}
			if flags.Changed("rounds") {
				cfg.Settings.FrontRounds = rounds
			}
			if flags.Changed("seed") {
				cfg.Settings.Seed = seed
			}
			if output.dir == "" {
				output.dir = cfg.ResultPath(args[0])
			}
			return c.runFront(cmd.Context(), cfg, args[0], output)
		},
	}

	cmd.Flags().IntVar(&guides, "guides", 8, "random guides to place")
	cmd.Flags().IntVar(&rounds, "rounds", 20, "swap rounds after guiding")
	cmd.Flags().Int64Var(&seed, "seed", 2027, "random seed")
	registerOutputFlags(cmd, &output)

	return cmd
}

func (c *CLI) runFront(ctx context.Context, cfg project.Config, name string, output outputFlags) error {
	start := time.Now()
	in, err := c.loadInput(cfg, name)
	if err != nil {
		return err
	}

	front, err := engine.NewFront(in.Design.DB, in.Bench, cfg.Settings)
	if err != nil {
		return err
	}
	front.Logger = c.Logger

	rec, err := project.NewRecorder(output.dir)
	if err != nil {
		return err
	}
	front.Observer = rec

	c.Logger.Info("front search", "benchmark", name, "guides", cfg.Settings.GuideRounds, "rounds", cfg.Settings.FrontRounds)
	out, runErr := front.Run(ctx)
	if out == nil || out.Best == nil {
		rec.Close()
		return runErr
	}

	m := project.NewManifest("front", in.Bench, cfg.Settings)
	if err := c.writeOutputs(in, out, rec, m, start, output); err != nil {
		return err
	}
	return runErr
}
