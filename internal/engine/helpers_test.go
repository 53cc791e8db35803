package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piwi3910/macroplace/internal/model"
)

func testBench(n int, gs float64) model.Benchmark {
	return model.Benchmark{Name: "test", GridNum: n, GridSize: gs}
}

func pins(nodes ...string) []model.Pin {
	out := make([]model.Pin, len(nodes))
	for i, n := range nodes {
		out[i] = model.Pin{Node: n, Direction: "B"}
	}
	return out
}

// tinyPorts returns n ports small enough to keep every macro above the
// mean node area.
func tinyPorts(xy ...[2]float64) []model.Node {
	out := make([]model.Node, len(xy))
	for i, p := range xy {
		out[i] = model.Node{Name: "p" + string(rune('1'+i)), Width: 0.5, Height: 0.5, X: p[0], Y: p[1]}
	}
	return out
}

// twoMacroDB is two 2x2 macros on one net on a 4x4 canvas.
func twoMacroDB() *model.DB {
	nodes := []model.Node{
		{Name: "A", Width: 2, Height: 2},
		{Name: "B", Width: 2, Height: 2},
	}
	nets := []model.Net{{Name: "n1", Pins: pins("A", "B")}}
	return model.NewDB("test", nodes, nets, 0, 4, 4)
}

type instance struct {
	db     *model.DB
	flow   *model.Flow
	region *model.Region
	bench  model.Benchmark
	seed   *model.Placement
}

// newInstance builds six macros and four edge ports on a 16x16 grid with a
// legal, hand-made seed placement. The grid is large enough that every
// constructive placement is legal.
func newInstance(t *testing.T) instance {
	t.Helper()
	nodes := []model.Node{
		{Name: "A", Width: 2, Height: 2},
		{Name: "B", Width: 3, Height: 2},
		{Name: "C", Width: 2, Height: 3},
		{Name: "D", Width: 2, Height: 2},
		{Name: "E", Width: 4, Height: 1},
		{Name: "F", Width: 1, Height: 4},
	}
	nodes = append(nodes, tinyPorts(
		[2]float64{15.2, 15.2}, [2]float64{15.2, 8.2}, [2]float64{8.2, 15.2}, [2]float64{0.2, 15.2},
	)...)
	nets := []model.Net{
		{Name: "n1", Pins: pins("A", "B", "p1")},
		{Name: "n2", Pins: pins("C", "D")},
		{Name: "n3", Pins: pins("E", "F", "A")},
		{Name: "n4", Pins: pins("B", "p2")},
	}
	db := model.NewDB("test", nodes, nets, 10, 16, 16)
	require.Len(t, db.Macros(), 6)
	require.Len(t, db.Ports(), 4)

	flow := model.NewFlow()
	flow.Set("A", "B", 1)
	flow.Set("B", "C", 0.5)
	flow.Set("D", "E", 2)
	flow.Set("A", "F", 0.3)

	bench := testBench(16, 1)
	seed := model.NewPlacement(1)
	at := map[string][2]float64{
		"A": {0, 0}, "B": {3, 0}, "C": {0, 3}, "D": {3, 3}, "E": {6, 0}, "F": {6, 3},
	}
	for _, name := range db.Names() {
		n := db.MustNode(name)
		if pos, ok := at[name]; ok {
			seed.Set(model.NewRecordAt(n, pos[0], pos[1], 1))
		} else {
			seed.Set(model.NewRecordAt(n, n.X, n.Y, 1))
		}
	}

	return instance{
		db:     db,
		flow:   flow,
		region: model.NewRegion(db, 1.25, 1.25),
		bench:  bench,
		seed:   seed,
	}
}

func testSettings() model.Settings {
	s := model.DefaultSettings()
	s.Mask = model.Weights{Alpha: 0.3, Beta: 0.3, Gamma: 0.4}
	s.Evaluate = model.Weights{Alpha: 0.3, Beta: 0.3, Gamma: 0.4}
	s.Iterations = 15
	s.Seed = 7
	return s
}

// requireNoOverlap checks that macro footprints stay on the grid and never
// intersect.
func requireNoOverlap(t *testing.T, db *model.DB, p *model.Placement, gridNum int) {
	t.Helper()
	macros := db.Macros()
	for i, a := range macros {
		ra, ok := p.Get(a)
		require.True(t, ok, "macro %s missing", a)
		require.GreaterOrEqual(t, ra.GridX, 0)
		require.GreaterOrEqual(t, ra.GridY, 0)
		require.LessOrEqual(t, ra.GridX+ra.ScaledWidth, gridNum, "macro %s leaves the grid", a)
		require.LessOrEqual(t, ra.GridY+ra.ScaledHeight, gridNum, "macro %s leaves the grid", a)
		for _, b := range macros[i+1:] {
			rb, _ := p.Get(b)
			overlapX := ra.GridX < rb.GridX+rb.ScaledWidth && rb.GridX < ra.GridX+ra.ScaledWidth
			overlapY := ra.GridY < rb.GridY+rb.ScaledHeight && rb.GridY < ra.GridY+ra.ScaledHeight
			require.False(t, overlapX && overlapY, "macros %s and %s overlap", a, b)
		}
	}
}
