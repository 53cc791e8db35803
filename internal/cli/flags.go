package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/importer"
	"github.com/piwi3910/macroplace/internal/model"
	"github.com/piwi3910/macroplace/internal/project"
)

// parseWeights parses "alpha,beta,gamma".
func parseWeights(s string) (model.Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return model.Weights{}, fmt.Errorf("weights %q: expected alpha,beta,gamma", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Weights{}, fmt.Errorf("weights %q: %w", s, err)
		}
		v[i] = f
	}
	w := model.Weights{Alpha: v[0], Beta: v[1], Gamma: v[2]}
	if err := w.Validate(); err != nil {
		return model.Weights{}, err
	}
	return w, nil
}

func formatWeights(w model.Weights) string {
	return fmt.Sprintf("%g,%g,%g", w.Alpha, w.Beta, w.Gamma)
}

// settingsFlags are command-line overrides of the configured settings.
// Only flags the user actually set are applied.
type settingsFlags struct {
	mask       string
	evaluate   string
	ranking    string
	iterations int
	seed       int64
	noPrio     bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := model.DefaultSettings()
	cmd.Flags().StringVar(&f.mask, "mask", formatWeights(d.Mask), "mask weights alpha,beta,gamma")
	cmd.Flags().StringVar(&f.evaluate, "eval", formatWeights(d.Evaluate), "evaluation weights alpha,beta,gamma")
	cmd.Flags().StringVar(&f.ranking, "ranking", d.Ranking, "macro ranking: mixed, area")
	cmd.Flags().IntVarP(&f.iterations, "iterations", "n", d.Iterations, "refinement iterations")
	cmd.Flags().Int64Var(&f.seed, "seed", d.Seed, "random seed")
	cmd.Flags().BoolVar(&f.noPrio, "no-prioritize", false, "do not move swapped macros to the front of the order")
}

func (f *settingsFlags) apply(cmd *cobra.Command, s model.Settings) (model.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("mask") {
		w, err := parseWeights(f.mask)
		if err != nil {
			return s, fmt.Errorf("--mask: %w", err)
		}
		s.Mask = w
	}
	if flags.Changed("eval") {
		w, err := parseWeights(f.evaluate)
		if err != nil {
			return s, fmt.Errorf("--eval: %w", err)
		}
		s.Evaluate = w
	}
	if flags.Changed("ranking") {
		s.Ranking = f.ranking
	}
	if flags.Changed("iterations") {
		s.Iterations = f.iterations
	}
	if flags.Changed("seed") {
		s.Seed = f.seed
	}
	if f.noPrio {
		s.PrioritizeSwapped = false
	}
	return s, s.Validate()
}

// loadPlacement reads a placement file by extension: .csv is a placement
// history, .dxf a drawing, anything else a bookshelf .pl file. shift
// applies the benchmark seed shift to .pl macros. An empty path uses the
// netlist positions.
func (c *CLI) loadPlacement(in *project.Input, path string, shift bool) (*model.Placement, error) {
	db, gs := in.Design.DB, in.Bench.GridSize
	if path == "" {
		return importer.SeedFromDB(db, gs), nil
	}

	var (
		res *importer.SeedResult
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		res, err = importer.LoadPlacementCSV(path, db, gs)
	case ".dxf":
		res, err = importer.ImportDXFPlacement(path, db, gs)
	default:
		res, err = importer.LoadSeedPl(path, db, in.Bench, shift)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		c.Logger.Warn(w, "file", path)
	}
	return res.Placement, nil
}
