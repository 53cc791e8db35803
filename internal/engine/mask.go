package engine

import (
	"math"

	"github.com/piwi3910/macroplace/internal/model"
)

// netBox is the running bounding box of the pins of one net placed so far.
type netBox struct {
	xMin, xMax float64
	yMin, yMax float64
	set        bool
}

func (b *netBox) add(x, y float64) {
	if !b.set {
		*b = netBox{xMin: x, xMax: x, yMin: y, yMax: y, set: true}
		return
	}
	b.xMin = math.Min(b.xMin, x)
	b.xMax = math.Max(b.xMax, x)
	b.yMin = math.Min(b.yMin, y)
	b.yMax = math.Max(b.yMax, y)
}

// overshoot returns how far v lies outside [lo, hi].
func overshoot(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// WireMask returns the HPWL increase of putting node's bottom-left corner
// on each cell, given the bounding boxes of the nets placed so far. The x
// and y contributions are independent, so each net costs O(gridNum): the
// x overshoot of column c is added to all of x=c and the y overshoot to
// all of y=c.
func WireMask(node *model.Node, db *model.DB, boxes []netBox, gridNum int, gridSize float64) *Grid {
	g := NewGrid(gridNum)
	nets := db.Nets()
	for _, idx := range db.NetsOf(node.Name) {
		box := boxes[idx]
		if !box.set {
			continue
		}
		pin, ok := nets[idx].Pin(node.Name)
		if !ok {
			continue
		}
		xOff := pin.XOffset + 0.5*node.Width
		yOff := pin.YOffset + 0.5*node.Height
		for c := 0; c < gridNum; c++ {
			base := float64(c) * gridSize
			if dx := overshoot(base+xOff, box.xMin, box.xMax); dx > 0 {
				g.AddX(c, dx)
			}
			if dy := overshoot(base+yOff, box.yMin, box.yMax); dy > 0 {
				g.AddY(c, dy)
			}
		}
	}
	return g
}

// DataMask returns the weighted Manhattan distance from node's center to
// each of its dataflow neighbors. A neighbor is located in placed when it
// has already been placed this round, otherwise in ref; neighbors found in
// neither are skipped.
//
// The mask is approximate: the x distance is sampled only on the diagonal
// cell (k, k) and broadcast to all of x=k, likewise y to all of y=k. This
// keeps each neighbor at O(gridNum) instead of O(gridNum^2).
func DataMask(node *model.Node, flow *model.Flow, placed, ref *model.Placement, gridNum int, gridSize float64) *Grid {
	g := NewGrid(gridNum)
	for _, e := range flow.Neighbors(node.Name) {
		rec, ok := placed.Get(e.To)
		if !ok && ref != nil {
			rec, ok = ref.Get(e.To)
		}
		if !ok {
			continue
		}
		x2, y2 := rec.CenterX(), rec.CenterY()
		for k := 0; k < gridNum; k++ {
			base := float64(k) * gridSize
			g.AddX(k, e.Weight*math.Abs(x2-(base+0.5*node.Width)))
			g.AddY(k, e.Weight*math.Abs(y2-(base+0.5*node.Height)))
		}
	}
	return g
}

// RegularityMask evaluates region.Cost for node on every cell.
func RegularityMask(node *model.Node, region *model.Region, gridNum int, gridSize float64) *Grid {
	g := NewGrid(gridNum)
	for x := 0; x < gridNum; x++ {
		left := float64(x) * gridSize
		for y := 0; y < gridNum; y++ {
			g.Set(x, y, region.Cost(left, float64(y)*gridSize, node.Width, node.Height))
		}
	}
	return g
}
