package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/macroplace/internal/model"
)

type point struct{ x, y float64 }

// segment is a line between two points, used for chaining loose LINE
// entities into closed rectangles.
type segment struct {
	start point
	end   point
}

// rect is an axis-aligned box recovered from a drawing.
type rect struct {
	minX, minY, maxX, maxY float64
}

func (r rect) contains(p point) bool {
	return p.x >= r.minX && p.x <= r.maxX && p.y >= r.minY && p.y <= r.maxY
}

func (r rect) area() float64 { return (r.maxX - r.minX) * (r.maxY - r.minY) }

// ImportDXFPlacement reads a placement drawn as a DXF file. Every closed
// LWPOLYLINE or loop of LINEs is a node outline and a TEXT entity inside
// it names the node. The bottom-left corner of the outline becomes the
// node position; nodes without a labelled outline keep their netlist
// position.
func ImportDXFPlacement(path string, db *model.DB, gridSize float64) (*SeedResult, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return nil, fmt.Errorf("DXF file contains no entities")
	}

	var rects []rect
	var segments []segment
	type label struct {
		name string
		at   point
	}
	var labels []label

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) >= 3 {
				pts := make([]point, len(e.Vertices))
				for i, v := range e.Vertices {
					pts[i] = point{v[0], v[1]}
				}
				rects = append(rects, boundingRect(pts))
			}
		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		case *entity.Text:
			labels = append(labels, label{name: e.Value, at: point{e.Coord1[0], e.Coord1[1]}})
		default:
			// Circles and other decorations are not node outlines
		}
	}
	for _, loop := range chainSegments(segments, 0.01) {
		rects = append(rects, boundingRect(loop))
	}

	// Smallest outlines first so a label binds to the innermost box.
	sort.Slice(rects, func(i, j int) bool { return rects[i].area() < rects[j].area() })

	positions := make(map[string][2]float64)
	var warnings []string
	for _, l := range labels {
		if !db.Has(l.name) {
			continue
		}
		found := false
		for _, r := range rects {
			if r.contains(l.at) {
				positions[l.name] = [2]float64{r.minX, r.minY}
				found = true
				break
			}
		}
		if !found {
			warnings = append(warnings, fmt.Sprintf("Label %q is outside every outline", l.name))
		}
	}

	res := buildSeed(db, gridSize, positions, 0, 0)
	res.Warnings = append(warnings, res.Warnings...)
	return res, nil
}

func boundingRect(pts []point) rect {
	r := rect{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	for _, p := range pts {
		r.minX = math.Min(r.minX, p.x)
		r.minY = math.Min(r.minY, p.y)
		r.maxX = math.Max(r.maxX, p.x)
		r.maxY = math.Max(r.maxY, p.y)
	}
	return r
}

// chainSegments connects individual segments into closed loops.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var loops [][]point

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			loops = append(loops, chain[:len(chain)-1])
		}
	}
	return loops
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tolerance
}
