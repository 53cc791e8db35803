package engine

import "github.com/piwi3910/macroplace/internal/model"

// Legality marks the grid cells where a node's bottom-left corner may go.
type Legality struct {
	N     int
	cells []bool
	count int
}

// Legal reports whether cell (x, y) is placeable.
func (l *Legality) Legal(x, y int) bool { return l.cells[x*l.N+y] }

// Count returns the number of placeable cells.
func (l *Legality) Count() int { return l.count }

// Any reports whether at least one cell is placeable.
func (l *Legality) Any() bool { return l.count > 0 }

// LegalityMask computes where node may be placed given everything already
// in placed. The footprint must stay inside the canvas, and each placed
// record excludes its own footprint grown by the node's footprint minus
// one cell towards the origin.
func LegalityMask(node *model.Node, placed *model.Placement, gridNum int, gridSize float64) *Legality {
	sw := node.ScaledWidth(gridSize)
	sh := node.ScaledHeight(gridSize)
	l := &Legality{N: gridNum, cells: make([]bool, gridNum*gridNum)}

	maxX := gridNum - sw
	maxY := gridNum - sh
	for x := 0; x <= maxX; x++ {
		for y := 0; y <= maxY; y++ {
			l.cells[x*gridNum+y] = true
		}
	}

	placed.Range(func(rec model.Record) {
		x0 := clamp(rec.GridX-sw+1, 0, gridNum)
		x1 := clamp(rec.GridX+rec.ScaledWidth, 0, gridNum)
		y0 := clamp(rec.GridY-sh+1, 0, gridNum)
		y1 := clamp(rec.GridY+rec.ScaledHeight, 0, gridNum)
		for x := x0; x < x1; x++ {
			row := l.cells[x*gridNum : (x+1)*gridNum]
			for y := y0; y < y1; y++ {
				row[y] = false
			}
		}
	})

	for _, ok := range l.cells {
		if ok {
			l.count++
		}
	}
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
