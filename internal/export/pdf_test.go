package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/macroplace/internal/model"
)

// buildTestDB creates a small netlist with four macros and two ports.
func buildTestDB() *model.DB {
	nodes := []model.Node{
		{Name: "m_alu", Width: 30, Height: 20},
		{Name: "m_fpu", Width: 25, Height: 25},
		{Name: "m_sram0", Width: 40, Height: 15},
		{Name: "m_sram1", Width: 40, Height: 15},
		{Name: "io_in", Width: 1, Height: 1, X: 0, Y: 50},
		{Name: "io_out", Width: 1, Height: 1, X: 99, Y: 50},
	}
	nets := []model.Net{
		{Name: "n0", Pins: []model.Pin{{Node: "m_alu"}, {Node: "m_fpu"}, {Node: "io_in"}}},
		{Name: "n1", Pins: []model.Pin{{Node: "m_sram0"}, {Node: "m_sram1"}, {Node: "io_out"}}},
	}
	return model.NewDB("demo", nodes, nets, 2000, 100, 100)
}

// buildTestPlacement places the macros along the canvas edges.
func buildTestPlacement(db *model.DB) *model.Placement {
	p := model.NewPlacement(5)
	at := map[string][2]float64{
		"m_alu":   {0, 0},
		"m_fpu":   {75, 0},
		"m_sram0": {0, 85},
		"m_sram1": {60, 85},
		"io_in":   {0, 50},
		"io_out":  {99, 50},
	}
	for _, name := range db.Names() {
		pos := at[name]
		p.Set(model.NewRecordAt(db.MustNode(name), pos[0], pos[1], 5))
	}
	return p
}

func buildTestReport() Report {
	db := buildTestDB()
	return Report{
		RunID:      "0d5c1f4e-7a8b-4f59-a1c2-3d4e5f607182",
		Command:    "refine",
		DB:         db,
		Placement:  buildTestPlacement(db),
		Region:     model.NewRegion(db, 1.25, 1.25),
		Bench:      model.Benchmark{Name: "demo", GridNum: 20, GridSize: 5, Ports: model.PortsKeep},
		Settings:   model.DefaultSettings(),
		Seed:       model.EvalRecord{HPWL: 420, Dataflow: 80, Regularity: 12},
		Best:       model.EvalRecord{Value: -1.2, HPWL: 350, Dataflow: 70, Regularity: 10},
		Iterations: 10,
		Accepted:   3,
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	err := ExportPDF(path, buildTestReport())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if len(data) < 500 {
		t.Errorf("PDF file seems too small: %d bytes", len(data))
	}
}

func TestExportPDF_EmptyPlacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	r := buildTestReport()
	r.Placement = model.NewPlacement(5)

	if err := ExportPDF(path, r); err == nil {
		t.Fatal("expected error for empty placement, got nil")
	}
}

func TestExportPDF_NoRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noregion.pdf")

	r := buildTestReport()
	r.Region = nil

	if err := ExportPDF(path, r); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_ManyMacros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	// Enough macros to spill the position table onto extra pages.
	var nodes []model.Node
	for i := 0; i < 120; i++ {
		nodes = append(nodes, model.Node{Name: fmt.Sprintf("m%03d", i), Width: 5, Height: 5})
	}
	db := model.NewDB("many", nodes, nil, 100, 200, 200)
	p := model.NewPlacement(5)
	for i, name := range db.Names() {
		p.Set(model.NewRecordAt(db.MustNode(name), float64(i%40)*5, float64(i/40)*5, 5))
	}

	r := buildTestReport()
	r.DB = db
	r.Placement = p
	r.Region = nil

	if err := ExportPDF(path, r); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		before, after float64
		want          string
	}{
		{100, 80, "-20.0%"},
		{50, 75, "+50.0%"},
		{0, 10, "-"},
	}
	for _, tt := range tests {
		if got := percentChange(tt.before, tt.after); got != tt.want {
			t.Errorf("percentChange(%v, %v) = %q, want %q", tt.before, tt.after, got, tt.want)
		}
	}
}

func TestReportSummary(t *testing.T) {
	s := buildTestReport().Summary()
	if s.Benchmark != "demo" || s.HPWL != 350 || s.Accepted != 3 {
		t.Errorf("unexpected summary %+v", s)
	}
}
