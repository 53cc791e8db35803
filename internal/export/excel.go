package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/model"
)

// Sheet names used by the workbook exporters.
const (
	SheetTrace   = "Trace"
	SheetSweep   = "Sweep"
	SheetSummary = "Summary"
)

var traceHeader = []interface{}{"Iteration", "Value", "HPWL", "Dataflow", "Regularity", "Legal", "Accepted", "Swapped", "Wall Clock"}

var sweepHeader = []interface{}{"Scenario", "Benchmark", "Alpha", "Beta", "Gamma", "Seed HPWL", "HPWL", "Dataflow", "Regularity", "Value", "Accepted", "Seconds", "Error"}

// ExportTraceExcel writes a refinement trace as a workbook with one row
// per iteration. Illegal iterations carry no metrics.
func ExportTraceExcel(path string, trace []model.TraceRecord) error {
	if len(trace) == 0 {
		return fmt.Errorf("no trace to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetTrace); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(trace))
	for _, t := range trace {
		swapped := ""
		if t.Swapped[0] != "" {
			swapped = t.Swapped[0] + " <-> " + t.Swapped[1]
		}
		row := []interface{}{t.Iteration}
		if t.Legal {
			row = append(row, t.Value, t.HPWL, t.Dataflow, t.Regularity)
		} else {
			row = append(row, "illegal", "", "", "")
		}
		row = append(row, t.Legal, t.Accepted, swapped, t.WallClock.Format(time.RFC3339))
		rows = append(rows, row)
	}

	if err := writeSheet(f, SheetTrace, traceHeader, rows); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// ExportSweepExcel writes sweep results on one sheet and, per benchmark,
// the scenario with the lowest HPWL on a summary sheet.
func ExportSweepExcel(path string, results []engine.SweepResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no sweep results to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSweep); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, sweepRow(r))
	}
	if err := writeSheet(f, SheetSweep, sweepHeader, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	var summary [][]interface{}
	for _, r := range BestPerBenchmark(results) {
		summary = append(summary, sweepRow(r))
	}
	if err := writeSheet(f, SheetSummary, sweepHeader, summary); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func sweepRow(r engine.SweepResult) []interface{} {
	w := r.Scenario.Settings.Evaluate
	row := []interface{}{r.Scenario.Name, r.Scenario.Benchmark, w.Alpha, w.Beta, w.Gamma}
	if r.Err != nil {
		return append(row, "", "", "", "", "", "", r.Duration.Seconds(), r.Err.Error())
	}
	return append(row, r.Seed.HPWL, r.Eval.HPWL, r.Eval.Dataflow, r.Eval.Regularity,
		r.Eval.Value, r.Accepted, r.Duration.Seconds(), "")
}

// BestPerBenchmark returns, for each benchmark, the successful result
// with the lowest HPWL, ordered by benchmark name.
func BestPerBenchmark(results []engine.SweepResult) []engine.SweepResult {
	best := make(map[string]engine.SweepResult)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		cur, ok := best[r.Scenario.Benchmark]
		if !ok || r.Eval.HPWL < cur.Eval.HPWL {
			best[r.Scenario.Benchmark] = r
		}
	}
	names := make([]string, 0, len(best))
	for name := range best {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]engine.SweepResult, len(names))
	for i, name := range names {
		out[i] = best[name]
	}
	return out
}

// writeSheet writes a bold header row followed by rows.
func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 14)
}
