package model

import "math"

// Region describes the preferred layout of macros: a central core disc
// reserved for standard cells and a square virtual boundary that macros
// should hug from the inside.
type Region struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
	L2      float64 `json:"l2"`

	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// NewRegion derives the core disc from the standard-cell area and the
// virtual boundary from the cell plus macro area, clipped to the canvas.
func NewRegion(db *DB, coreScale, boundaryScale float64) *Region {
	r := &Region{
		CenterX: db.Width / 2,
		CenterY: db.Height / 2,
		Radius:  math.Sqrt(coreScale * db.CellArea / math.Pi),
	}
	r.L2 = (r.CenterX - r.Radius) * r.Radius

	side := math.Sqrt((db.CellArea + db.MacroArea()) * boundaryScale)
	r.Left = math.Max(0, r.CenterX-side/2)
	r.Right = math.Min(db.Width, r.CenterX+side/2)
	r.Bottom = math.Max(0, r.CenterY-side/2)
	r.Top = math.Min(db.Height, r.CenterY+side/2)
	return r
}

// Cost returns the regularity penalty of a rectangle with bottom-left
// (left, bottom). Rectangles centered inside the core disc are pushed
// outwards; elsewhere the cost is the distance to the nearest boundary side.
func (r *Region) Cost(left, bottom, width, height float64) float64 {
	right := left + width
	top := bottom + height
	cx := left + width/2
	cy := bottom + height/2
	d := math.Hypot(cx-r.CenterX, cy-r.CenterY)
	if d <= r.Radius {
		return r.L2 / (d + 1e-5)
	}
	return math.Min(
		math.Min(math.Abs(left-r.Left), math.Abs(r.Right-right)),
		math.Min(math.Abs(bottom-r.Bottom), math.Abs(r.Top-top)),
	)
}
