package model

import (
	"fmt"
	"math"
	"sort"
)

// Record is the placement of a single node. X and Y are the physical
// bottom-left corner; GridX and GridY the grid cell it was placed on.
type Record struct {
	Name         string  `json:"name"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	GridX        int     `json:"grid_x"`
	GridY        int     `json:"grid_y"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ScaledWidth  int     `json:"scaled_width"`
	ScaledHeight int     `json:"scaled_height"`
}

// NewRecord places n with its bottom-left corner at (x, y) on grid cell
// (gridX, gridY) and computes the grid footprint.
func NewRecord(n *Node, gridX, gridY int, x, y, gridSize float64) Record {
	r := Record{
		Name:   n.Name,
		Width:  n.Width,
		Height: n.Height,
		GridX:  gridX,
		GridY:  gridY,
		X:      x,
		Y:      y,
	}
	r.Refresh(gridSize)
	return r
}

// NewRecordAt places n at the physical bottom-left corner (x, y) and
// derives the grid cell by flooring.
func NewRecordAt(n *Node, x, y, gridSize float64) Record {
	gx := int(math.Floor(x / gridSize))
	gy := int(math.Floor(y / gridSize))
	return NewRecord(n, gx, gy, x, y, gridSize)
}

// Refresh recomputes the footprint, which accounts for the offset of the
// physical corner inside its grid cell.
func (r *Record) Refresh(gridSize float64) {
	r.ScaledWidth = int(math.Ceil((r.Width + r.X - gridSize*float64(r.GridX)) / gridSize))
	r.ScaledHeight = int(math.Ceil((r.Height + r.Y - gridSize*float64(r.GridY)) / gridSize))
}

// CenterX returns the physical center x.
func (r Record) CenterX() float64 { return r.X + 0.5*r.Width }

// CenterY returns the physical center y.
func (r Record) CenterY() float64 { return r.Y + 0.5*r.Height }

// Area returns width * height.
func (r Record) Area() float64 { return r.Width * r.Height }

// Placement maps node names to records. The zero value is not usable;
// build one with NewPlacement.
type Placement struct {
	GridSize float64
	records  map[string]Record
}

// NewPlacement returns an empty placement on a grid of the given pitch.
func NewPlacement(gridSize float64) *Placement {
	return &Placement{GridSize: gridSize, records: make(map[string]Record)}
}

// Set stores rec under its name.
func (p *Placement) Set(rec Record) {
	p.records[rec.Name] = rec
}

// Get returns the record for name.
func (p *Placement) Get(name string) (Record, bool) {
	rec, ok := p.records[name]
	return rec, ok
}

// Has reports whether name is placed.
func (p *Placement) Has(name string) bool {
	_, ok := p.records[name]
	return ok
}

// Len returns the number of placed nodes.
func (p *Placement) Len() int { return len(p.records) }

// Names returns every placed name, sorted.
func (p *Placement) Names() []string {
	names := make([]string, 0, len(p.records))
	for name := range p.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns all records ordered by name.
func (p *Placement) Records() []Record {
	names := p.Names()
	out := make([]Record, len(names))
	for i, name := range names {
		out[i] = p.records[name]
	}
	return out
}

// Clone returns a deep copy. Mutating the copy never affects p.
func (p *Placement) Clone() *Placement {
	c := &Placement{GridSize: p.GridSize, records: make(map[string]Record, len(p.records))}
	for name, rec := range p.records {
		c.records[name] = rec
	}
	return c
}

// Swap exchanges the physical and grid positions of a and b and refreshes
// their footprints. Dimensions stay with their node.
func (p *Placement) Swap(a, b string) error {
	ra, ok := p.records[a]
	if !ok {
		return fmt.Errorf("swap %q: %w", a, ErrNodeNotFound)
	}
	rb, ok := p.records[b]
	if !ok {
		return fmt.Errorf("swap %q: %w", b, ErrNodeNotFound)
	}
	ra.X, rb.X = rb.X, ra.X
	ra.Y, rb.Y = rb.Y, ra.Y
	ra.GridX, rb.GridX = rb.GridX, ra.GridX
	ra.GridY, rb.GridY = rb.GridY, ra.GridY
	ra.Refresh(p.GridSize)
	rb.Refresh(p.GridSize)
	p.records[a] = ra
	p.records[b] = rb
	return nil
}

// Range calls fn for every record in unspecified order.
func (p *Placement) Range(fn func(Record)) {
	for _, rec := range p.records {
		fn(rec)
	}
}
