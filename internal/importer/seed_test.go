package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/macroplace/internal/model"
)

// ─── Seed .pl Tests ────────────────────────────────────────

func TestReadSeedPl_ShiftsMacrosOnly(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)
	bench := testBenchmark(model.PortsKeep)

	res, err := ReadSeedPl(strings.NewReader("M1 1 1 : N\nM2 10 20 : N\np1 7 7 : N\n"), design.DB, bench, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m1, _ := res.Placement.Get("M1")
	if m1.X != 3 || m1.Y != 4 || m1.GridX != 0 || m1.GridY != 0 {
		t.Errorf("unexpected M1 record %+v", m1)
	}
	m2, _ := res.Placement.Get("M2")
	if m2.X != 12 || m2.Y != 23 || m2.GridX != 2 || m2.GridY != 4 {
		t.Errorf("unexpected M2 record %+v", m2)
	}
	p1, _ := res.Placement.Get("p1")
	if p1.X != 7 || p1.Y != 7 {
		t.Errorf("expected port p1 unshifted at (7,7), got (%v,%v)", p1.X, p1.Y)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "p2" {
		t.Errorf("expected p2 missing, got %v", res.Missing)
	}
	p2, _ := res.Placement.Get("p2")
	if p2.X != 39 || p2.Y != 1 {
		t.Errorf("expected p2 at netlist position, got (%v,%v)", p2.X, p2.Y)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", res.Warnings)
	}
}

func TestReadSeedPl_NoShift(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)

	res, err := ReadSeedPl(strings.NewReader(testPl), design.DB, testBenchmark(model.PortsKeep), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, _ := res.Placement.Get("M2")
	if m2.X != 20 || m2.Y != 30 {
		t.Errorf("expected M2 at (20,30), got (%v,%v)", m2.X, m2.Y)
	}
	if res.Placement.Has("c1") {
		t.Error("expected standard cell c1 to be ignored")
	}
	if len(res.Missing) != 0 {
		t.Errorf("expected nothing missing, got %v", res.Missing)
	}
}

func TestLoadSeedPl_MissingFile(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)
	_, err := LoadSeedPl(filepath.Join(t.TempDir(), "none.pl"), design.DB, testBenchmark(model.PortsKeep), false)
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSeedFromDB(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)

	p := SeedFromDB(design.DB, 5)

	if p.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", p.Len())
	}
	m2, _ := p.Get("M2")
	if m2.GridX != 4 || m2.GridY != 6 {
		t.Errorf("expected M2 on cell (4,6), got (%d,%d)", m2.GridX, m2.GridY)
	}
}

// ─── Placement CSV Tests ───────────────────────────────────

const testHistory = `10.5,2026-01-01 10:00:00
M1,0,0
M2,5,5

3.2,2026-01-01 10:05:00
M1,10,10
M2,20,25
p1,7,7
p2,39,1
`

func TestReadPlacementCSV_UsesLastBlock(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)

	res, err := ReadPlacementCSV(strings.NewReader(testHistory), design.DB, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m1, _ := res.Placement.Get("M1")
	if m1.X != 10 || m1.GridX != 2 {
		t.Errorf("expected M1 from the last block, got %+v", m1)
	}
	m2, _ := res.Placement.Get("M2")
	if m2.Y != 25 || m2.GridY != 5 {
		t.Errorf("expected M2 from the last block, got %+v", m2)
	}
	if len(res.Missing) != 0 || len(res.Warnings) != 0 {
		t.Errorf("unexpected problems: missing %v, warnings %v", res.Missing, res.Warnings)
	}
}

func TestReadPlacementCSV_BadRows(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)

	res, err := ReadPlacementCSV(strings.NewReader("1,now\nM1,a,b\nM2\n"), design.DB, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two bad rows plus the missing-nodes summary.
	if len(res.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", res.Warnings)
	}
	if len(res.Missing) != 4 {
		t.Errorf("expected all nodes missing, got %v", res.Missing)
	}
}

func TestReadPlacementCSV_NoScoreRow(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)
	if _, err := ReadPlacementCSV(strings.NewReader("M1,0,0\n"), design.DB, 5); err == nil {
		t.Error("expected an error without a score row")
	}
}
