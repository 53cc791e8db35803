package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/export"
	"github.com/piwi3910/macroplace/internal/project"
)

// outputFlags select the optional artifacts written next to the result files.
type outputFlags struct {
	dir      string
	pdf      bool
	dxf      bool
	workbook bool
	curve    bool
}

// writeOutputs finishes a run: closes the recorder, writes the .pl files,
// the optional exports and the manifest, and prints what was written.
func (c *CLI) writeOutputs(in *project.Input, out *engine.Outcome, rec *project.Recorder, m project.Manifest, start time.Time, opts outputFlags) error {
	name := in.Bench.Name
	rec.Finish(out)
	if err := rec.Close(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	m.Files = append(m.Files, project.CurveFile, project.PlacementFile)

	for _, t := range out.Trace {
		if t.Legal {
			m.Seed = t.Eval()
			break
		}
	}
	m.Best = out.Eval
	if len(out.Trace) > 0 {
		m.Iterations = out.Trace[len(out.Trace)-1].Iteration
	}
	m.Accepted = out.Accepted
	m.Duration = time.Since(start).Round(time.Millisecond).String()

	var errs []error
	add := func(file string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
			return
		}
		m.Files = append(m.Files, file)
	}

	db := in.Design.DB
	detailed := name + ".pl"
	add(detailed, project.WritePlForDetailed(filepath.Join(opts.dir, detailed), db, out.Best))
	refinePl := name + ".refine.pl"
	add(refinePl, project.WritePlForRefine(filepath.Join(opts.dir, refinePl), db, out.Best))

	if opts.pdf {
		report := export.Report{
			RunID:      m.ID,
			Command:    m.Command,
			DB:         db,
			Placement:  out.Best,
			Region:     in.Region,
			Bench:      in.Bench,
			Settings:   m.Settings,
			Seed:       m.Seed,
			Best:       m.Best,
			Iterations: m.Iterations,
			Accepted:   m.Accepted,
		}
		add("report.pdf", export.ExportPDF(filepath.Join(opts.dir, "report.pdf"), report))
	}
	if opts.dxf {
		add("placement.dxf", export.ExportDXF(filepath.Join(opts.dir, "placement.dxf"), db, out.Best, in.Region))
	}
	if opts.workbook {
		add("trace.xlsx", export.ExportTraceExcel(filepath.Join(opts.dir, "trace.xlsx"), out.Trace))
	}
	if opts.curve {
		add("curve.png", export.ExportCurvePNG(filepath.Join(opts.dir, "curve.png"), name, out.Trace))
	}

	add("manifest.json", project.SaveManifest(filepath.Join(opts.dir, "manifest.json"), m))

	printSuccess("%s %s finished in %s (run %s)", m.Command, name, m.Duration, m.ShortID())
	printEval("Best", out.Eval)
	printKeyValue("Accepted", fmt.Sprintf("%d / %d", out.Accepted, m.Iterations))
	for _, f := range m.Files {
		printFile(filepath.Join(opts.dir, f))
	}
	for _, err := range errs {
		printError("%v", err)
	}
	printNewline()
	return errors.Join(errs...)
}
