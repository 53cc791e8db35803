package project

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/model"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func unixSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', 6, 64)
}

// CurveRow formats one row of the convergence curve:
// value, hpwl, dataflow, regularity, wall clock in unix seconds.
func CurveRow(eval model.EvalRecord, at time.Time) []string {
	return []string{
		formatFloat(eval.Value),
		formatFloat(eval.HPWL),
		formatFloat(eval.Dataflow),
		formatFloat(eval.Regularity),
		unixSeconds(at),
	}
}

// WritePlacementBlock appends one block of the placement history: a
// "score,wallclock" row, one "name,x,y" row per record and an empty row.
func WritePlacementBlock(w io.Writer, score float64, at time.Time, p *model.Placement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{formatFloat(score), unixSeconds(at)}); err != nil {
		return err
	}
	for _, rec := range p.Records() {
		if err := cw.Write([]string{rec.Name, formatFloat(rec.X), formatFloat(rec.Y)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WritePl writes p in bookshelf .pl format. Ports are always /FIXED;
// fixAll marks every node /FIXED as the detailed placer expects.
func WritePl(w io.Writer, db *model.DB, p *model.Placement, fixAll bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "UCLA pl 1.0\n\n")
	for _, rec := range p.Records() {
		n, ok := db.Node(rec.Name)
		if !ok {
			return fmt.Errorf("write pl %q: %w", rec.Name, model.ErrNodeNotFound)
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t: N", rec.Name, formatFloat(rec.X), formatFloat(rec.Y))
		if fixAll || n.IsPort {
			fmt.Fprint(bw, " /FIXED")
		}
		fmt.Fprint(bw, "\n")
	}
	return bw.Flush()
}

// WritePlForDetailed writes a .pl file with every node fixed.
func WritePlForDetailed(path string, db *model.DB, p *model.Placement) error {
	return writePlFile(path, db, p, true)
}

// WritePlForRefine writes a .pl file with only the ports fixed.
func WritePlForRefine(path string, db *model.DB, p *model.Placement) error {
	return writePlFile(path, db, p, false)
}

func writePlFile(path string, db *model.DB, p *model.Placement, fixAll bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pl: %w", err)
	}
	defer f.Close()
	if err := WritePl(f, db, p, fixAll); err != nil {
		return fmt.Errorf("failed to write pl: %w", err)
	}
	return f.Close()
}

// Recorder persists refinement progress. It appends a curve row for every
// legal iteration and a placement block for every improvement. Write
// errors are kept and reported by Close.
type Recorder struct {
	curveFile     *os.File
	curve         *csv.Writer
	placementFile *os.File
	err           error
	records       int
}

var _ engine.Observer = (*Recorder)(nil)

// Curve and placement file names inside a result directory.
const (
	CurveFile     = "curve.csv"
	PlacementFile = "placement.csv"
)

// NewRecorder opens (or creates) the curve and placement files in dir for
// appending.
func NewRecorder(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create result directory: %w", err)
	}
	curveFile, err := os.OpenFile(filepath.Join(dir, CurveFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open curve: %w", err)
	}
	placementFile, err := os.OpenFile(filepath.Join(dir, PlacementFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		curveFile.Close()
		return nil, fmt.Errorf("failed to open placement history: %w", err)
	}
	return &Recorder{
		curveFile:     curveFile,
		curve:         csv.NewWriter(curveFile),
		placementFile: placementFile,
	}, nil
}

func (r *Recorder) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// OnIteration implements engine.Observer.
func (r *Recorder) OnIteration(rec model.TraceRecord) {
	if !rec.Legal {
		return
	}
	r.keep(r.curve.Write(CurveRow(rec.Eval(), rec.WallClock)))
	r.curve.Flush()
	r.keep(r.curve.Error())
	r.records++
}

// OnImproved implements engine.Observer.
func (r *Recorder) OnImproved(_ int, best *model.Placement, eval model.EvalRecord) {
	r.keep(WritePlacementBlock(r.placementFile, eval.HPWL, time.Now(), best))
}

// Rows returns the number of curve rows written so far.
func (r *Recorder) Rows() int { return r.records }

// Finish writes the closing curve row for the best result followed by an
// empty row, and the final placement block.
func (r *Recorder) Finish(out *engine.Outcome) {
	now := time.Now()
	r.keep(r.curve.Write(CurveRow(out.Eval, now)))
	r.keep(r.curve.Write([]string{}))
	r.curve.Flush()
	r.keep(r.curve.Error())
	r.keep(WritePlacementBlock(r.placementFile, out.Eval.HPWL, now, out.Best))
}

// Close closes both files and returns the first error met while writing.
func (r *Recorder) Close() error {
	r.curve.Flush()
	r.keep(r.curve.Error())
	r.keep(r.curveFile.Close())
	r.keep(r.placementFile.Close())
	return r.err
}
