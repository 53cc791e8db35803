package importer

import (
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"

	"github.com/piwi3910/macroplace/internal/model"
)

// ─── DXF Placement Tests ───────────────────────────────────

func TestImportDXFPlacement(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)
	path := filepath.Join(t.TempDir(), "placement.dxf")

	d := dxf.NewDrawing()
	if _, err := d.AddLayer("MACROS", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		t.Fatalf("failed to add layer: %v", err)
	}

	// M1 as a closed polyline at (15,5).
	if _, err := d.LwPolyline(true, []float64{15, 5}, []float64{25, 5}, []float64{25, 15}, []float64{15, 15}); err != nil {
		t.Fatalf("failed to draw polyline: %v", err)
	}
	if _, err := d.Text("M1", 18, 8, 0, 1); err != nil {
		t.Fatalf("failed to draw text: %v", err)
	}

	// M2 as four loose lines at (0,20).
	corners := [][2]float64{{0, 20}, {8, 20}, {8, 26}, {0, 26}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			t.Fatalf("failed to draw line: %v", err)
		}
	}
	if _, err := d.Text("M2", 2, 22, 0, 1); err != nil {
		t.Fatalf("failed to draw text: %v", err)
	}

	// A label with no outline and one for an unknown node.
	if _, err := d.Text("p1", 35, 35, 0, 1); err != nil {
		t.Fatalf("failed to draw text: %v", err)
	}
	if _, err := d.Text("ghost", 20, 10, 0, 1); err != nil {
		t.Fatalf("failed to draw text: %v", err)
	}

	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	res, err := ImportDXFPlacement(path, design.DB, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m1, _ := res.Placement.Get("M1")
	if m1.X != 15 || m1.Y != 5 || m1.GridX != 3 || m1.GridY != 1 {
		t.Errorf("unexpected M1 record %+v", m1)
	}
	m2, _ := res.Placement.Get("M2")
	if m2.X != 0 || m2.Y != 20 {
		t.Errorf("expected M2 at (0,20), got (%v,%v)", m2.X, m2.Y)
	}
	if len(res.Missing) != 2 {
		t.Errorf("expected both ports missing, got %v", res.Missing)
	}
	// p1 outside every outline, plus the missing-nodes summary.
	if len(res.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", res.Warnings)
	}
}

func TestImportDXFPlacement_MissingFile(t *testing.T) {
	design := readTestDesign(t, model.PortsKeep)
	if _, err := ImportDXFPlacement(filepath.Join(t.TempDir(), "none.dxf"), design.DB, 5); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// ─── chainSegments Tests ───────────────────────────────────

func TestChainSegments_ClosedLoop(t *testing.T) {
	segs := []segment{
		{point{0, 0}, point{4, 0}},
		{point{4, 4}, point{0, 4}},
		{point{4, 0}, point{4, 4}},
		{point{0, 4}, point{0, 0}},
	}
	loops := chainSegments(segs, 0.01)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	r := boundingRect(loops[0])
	if r.minX != 0 || r.minY != 0 || r.maxX != 4 || r.maxY != 4 {
		t.Errorf("unexpected bounds %+v", r)
	}
}

func TestChainSegments_OpenChain(t *testing.T) {
	segs := []segment{
		{point{0, 0}, point{4, 0}},
		{point{4, 0}, point{4, 4}},
	}
	if loops := chainSegments(segs, 0.01); len(loops) != 0 {
		t.Errorf("expected no loops, got %d", len(loops))
	}
}
