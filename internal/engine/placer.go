package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/macroplace/internal/model"
)

// Result is the outcome of one constructive placement. When Legal is false
// FailedNode names the macro that had no legal cell and Placement holds
// the nodes placed before it.
type Result struct {
	Placement  *model.Placement
	Legal      bool
	FailedNode string
}

// Placer builds complete placements by visiting nodes in a fixed order and
// putting each macro on the cheapest legal cell of its combined cost mask.
// A Placer caches regularity masks and must not be shared between
// goroutines.
type Placer struct {
	DB       *model.DB
	Flow     *model.Flow
	Region   *model.Region
	GridNum  int
	GridSize float64
	Weights  model.Weights // L1-normalized by NewPlacer

	regularity map[string]*Grid
}

// NewPlacer validates the mask weights and returns a placer. A nil region
// disables the regularity mask; a nil flow disables the dataflow mask.
func NewPlacer(db *model.DB, flow *model.Flow, region *model.Region, bench model.Benchmark, weights model.Weights) (*Placer, error) {
	w, err := weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("mask weights: %w", err)
	}
	if bench.GridNum <= 0 || bench.GridSize <= 0 {
		return nil, fmt.Errorf("benchmark %q: invalid grid %dx%g", bench.Name, bench.GridNum, bench.GridSize)
	}
	if flow == nil {
		flow = model.NewFlow()
	}
	return &Placer{
		DB:         db,
		Flow:       flow,
		Region:     region,
		GridNum:    bench.GridNum,
		GridSize:   bench.GridSize,
		Weights:    w,
		regularity: make(map[string]*Grid),
	}, nil
}

// Place visits order and returns a fresh placement. Ports keep the
// position they have in ref (or their netlist position); macros are
// placed greedily. ref also provides the dataflow fallback positions and
// the tie-break anchor. ref is never modified.
func (p *Placer) Place(order []string, ref *model.Placement) Result {
	placed := model.NewPlacement(p.GridSize)
	boxes := make([]netBox, len(p.DB.Nets()))

	for _, name := range order {
		node, ok := p.DB.Node(name)
		if !ok {
			continue
		}

		var rec model.Record
		if node.IsPort {
			rec = p.portRecord(node, ref)
		} else {
			legal := LegalityMask(node, placed, p.GridNum, p.GridSize)
			if !legal.Any() {
				return Result{Placement: placed, Legal: false, FailedNode: name}
			}
			gx, gy := p.choose(node, legal, placed, ref, boxes)
			rec = model.NewRecord(node, gx, gy, float64(gx)*p.GridSize, float64(gy)*p.GridSize, p.GridSize)
		}
		placed.Set(rec)
		p.updateBoxes(rec, boxes)
	}
	return Result{Placement: placed, Legal: true}
}

func (p *Placer) portRecord(node *model.Node, ref *model.Placement) model.Record {
	if ref != nil {
		if rec, ok := ref.Get(node.Name); ok {
			return rec
		}
	}
	return model.NewRecordAt(node, node.X, node.Y, p.GridSize)
}

// cost combines the normalized masks whose weight is non-zero.
func (p *Placer) cost(node *model.Node, placed, ref *model.Placement, boxes []netBox) *Grid {
	total := NewGrid(p.GridNum)
	if p.Weights.Alpha > 0 {
		wire := WireMask(node, p.DB, boxes, p.GridNum, p.GridSize).Normalize()
		total.AddScaled(wire, p.Weights.Alpha)
	}
	if p.Weights.Beta > 0 {
		data := DataMask(node, p.Flow, placed, ref, p.GridNum, p.GridSize).Normalize()
		total.AddScaled(data, p.Weights.Beta)
	}
	if p.Weights.Gamma > 0 && p.Region != nil {
		total.AddScaled(p.regularityMask(node), p.Weights.Gamma)
	}
	return total
}

func (p *Placer) regularityMask(node *model.Node) *Grid {
	if g, ok := p.regularity[node.Name]; ok {
		return g
	}
	g := RegularityMask(node, p.Region, p.GridNum, p.GridSize).Normalize()
	p.regularity[node.Name] = g
	return g
}

// choose returns the legal cell with the lowest cost. Equal costs go to
// the cell closest to the node's position in ref.
func (p *Placer) choose(node *model.Node, legal *Legality, placed, ref *model.Placement, boxes []netBox) (int, int) {
	mask := p.cost(node, placed, ref, boxes)

	ax, ay := p.anchor(node, ref)
	bestX, bestY := -1, -1
	bestCost := math.Inf(1)
	bestDist := math.MaxInt
	for x := 0; x < p.GridNum; x++ {
		for y := 0; y < p.GridNum; y++ {
			if !legal.Legal(x, y) {
				continue
			}
			c := mask.At(x, y)
			if c > bestCost {
				continue
			}
			d := (x-ax)*(x-ax) + (y-ay)*(y-ay)
			if c < bestCost || d < bestDist {
				bestX, bestY, bestCost, bestDist = x, y, c, d
			}
		}
	}
	return bestX, bestY
}

func (p *Placer) anchor(node *model.Node, ref *model.Placement) (int, int) {
	if ref != nil {
		if rec, ok := ref.Get(node.Name); ok {
			return rec.GridX, rec.GridY
		}
	}
	return int(math.Floor(node.X / p.GridSize)), int(math.Floor(node.Y / p.GridSize))
}

func (p *Placer) updateBoxes(rec model.Record, boxes []netBox) {
	nets := p.DB.Nets()
	cx, cy := rec.CenterX(), rec.CenterY()
	for _, idx := range p.DB.NetsOf(rec.Name) {
		pin, ok := nets[idx].Pin(rec.Name)
		if !ok {
			continue
		}
		boxes[idx].add(cx+pin.XOffset, cy+pin.YOffset)
	}
}
