package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/export"
	"github.com/piwi3910/macroplace/internal/model"
)

type exportOptions struct {
	dir   string
	pdf   bool
	dxf   bool
	shift bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <benchmark> <placement>",
		Short: "Export a placement as a PDF report or DXF drawing",
		Long: `Export a placement as a PDF report or DXF drawing.

The placement is read like in evaluate. Without --pdf or --dxf both
files are written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.dir == "" {
				opts.dir = cfg.ResultPath(args[0])
			}
			if !opts.pdf && !opts.dxf {
				opts.pdf, opts.dxf = true, true
			}

			in, err := c.loadInput(cfg, args[0])
			if err != nil {
				return err
			}
			p, err := c.loadPlacement(in, args[1], opts.shift)
			if err != nil {
				return fmt.Errorf("load placement: %w", err)
			}
			if err := os.MkdirAll(opts.dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", opts.dir, err)
			}

			db := in.Design.DB
			eval := model.EvalRecord{
				HPWL:       engine.HPWL(db, p),
				Dataflow:   engine.Dataflow(db, in.Flow, p),
				Regularity: engine.Regularity(db, in.Region, p),
			}

			var (
				files []string
				errs  []error
			)
			if opts.pdf {
				path := filepath.Join(opts.dir, "report.pdf")
				report := export.Report{
					RunID:     filepath.Base(args[1]),
					Command:   "export",
					DB:        db,
					Placement: p,
					Region:    in.Region,
					Bench:     in.Bench,
					Settings:  cfg.Settings,
					Seed:      eval,
					Best:      eval,
				}
				if err := export.ExportPDF(path, report); err != nil {
					errs = append(errs, fmt.Errorf("report.pdf: %w", err))
				} else {
					files = append(files, path)
				}
			}
			if opts.dxf {
				path := filepath.Join(opts.dir, "placement.dxf")
				if err := export.ExportDXF(path, db, p, in.Region); err != nil {
					errs = append(errs, fmt.Errorf("placement.dxf: %w", err))
				} else {
					files = append(files, path)
				}
			}

			printSuccess("exported %s", args[1])
			for _, f := range files {
				printFile(f)
			}
			for _, err := range errs {
				printError("%v", err)
			}
			printNewline()
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "output", "o", "", "output directory (default: <result_dir>/<benchmark>)")
	cmd.Flags().BoolVar(&opts.pdf, "pdf", false, "write a PDF report")
	cmd.Flags().BoolVar(&opts.dxf, "dxf", false, "write a DXF drawing")
	cmd.Flags().BoolVar(&opts.shift, "shift", false, "apply the benchmark seed shift to .pl macro coordinates")

	return cmd
}
