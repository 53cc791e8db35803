package engine

import (
	"math"

	"github.com/piwi3910/macroplace/internal/model"
)

// RunningStat tracks mean and population variance online (Welford).
type RunningStat struct {
	n    int
	mean float64
	s    float64
	last float64
}

// Push folds x into the statistics.
func (r *RunningStat) Push(x float64) {
	r.n++
	if r.n == 1 {
		r.mean = x
		r.s = 0
	} else {
		old := r.mean
		r.mean += (x - old) / float64(r.n)
		r.s += (x - old) * (x - r.mean)
	}
	r.last = x
}

// Count returns the number of samples pushed.
func (r *RunningStat) Count() int { return r.n }

// Mean returns the running mean.
func (r *RunningStat) Mean() float64 { return r.mean }

// Var returns the population variance; 1 before any sample.
func (r *RunningStat) Var() float64 {
	if r.n == 0 {
		return 1
	}
	return r.s / float64(r.n)
}

// Std returns the population standard deviation.
func (r *RunningStat) Std() float64 { return math.Sqrt(r.Var()) }

// Normalized z-scores the most recent sample against the current stats.
func (r *RunningStat) Normalized() float64 {
	return (r.last - r.mean) / (r.Std() + 1e-8)
}

// Evaluator scores complete placements. The combined value is a weighted
// sum of z-scores against running statistics, so it depends on every
// placement evaluated before; the raw metrics do not.
type Evaluator struct {
	DB      *model.DB
	Flow    *model.Flow
	Region  *model.Region
	Weights model.Weights

	hpwl       RunningStat
	dataflow   RunningStat
	regularity RunningStat
}

// NewEvaluator returns an evaluator with fresh statistics.
func NewEvaluator(db *model.DB, flow *model.Flow, region *model.Region, weights model.Weights) *Evaluator {
	if flow == nil {
		flow = model.NewFlow()
	}
	return &Evaluator{DB: db, Flow: flow, Region: region, Weights: weights}
}

// Evaluate computes the metrics whose weight is non-zero, folds them into
// the running statistics and returns the combined value.
func (e *Evaluator) Evaluate(p *model.Placement) model.EvalRecord {
	rec := e.Measure(p)
	e.hpwl.Push(rec.HPWL)
	e.dataflow.Push(rec.Dataflow)
	e.regularity.Push(rec.Regularity)
	rec.Value = e.Weights.Alpha*e.hpwl.Normalized() +
		e.Weights.Beta*e.dataflow.Normalized() +
		e.Weights.Gamma*e.regularity.Normalized()
	return rec
}

// Measure computes the raw metrics without touching the statistics.
// Value is left at zero.
func (e *Evaluator) Measure(p *model.Placement) model.EvalRecord {
	var rec model.EvalRecord
	if e.Weights.Alpha > 0 {
		rec.HPWL = HPWL(e.DB, p)
	}
	if e.Weights.Beta > 0 {
		rec.Dataflow = Dataflow(e.DB, e.Flow, p)
	}
	if e.Weights.Gamma > 0 && e.Region != nil {
		rec.Regularity = Regularity(e.DB, e.Region, p)
	}
	return rec
}

// HPWL returns the half-perimeter wirelength summed over all nets, using
// only the pins whose node is in p.
func HPWL(db *model.DB, p *model.Placement) float64 {
	var total float64
	for _, net := range db.Nets() {
		var box netBox
		for _, pin := range net.Pins {
			rec, ok := p.Get(pin.Node)
			if !ok {
				continue
			}
			box.add(rec.CenterX()+pin.XOffset, rec.CenterY()+pin.YOffset)
		}
		if box.set {
			total += (box.xMax - box.xMin) + (box.yMax - box.yMin)
		}
	}
	return total
}

// Dataflow sums weight * Manhattan center distance over every macro and
// each of its placed flow neighbors. Symmetric pairs count twice.
func Dataflow(db *model.DB, flow *model.Flow, p *model.Placement) float64 {
	var total float64
	for _, name := range db.Macros() {
		a, ok := p.Get(name)
		if !ok {
			continue
		}
		for _, e := range flow.Neighbors(name) {
			b, ok := p.Get(e.To)
			if !ok {
				continue
			}
			d := math.Abs(a.CenterX()-b.CenterX()) + math.Abs(a.CenterY()-b.CenterY())
			total += e.Weight * d
		}
	}
	return total
}

// Regularity sums area * region cost over every placed macro.
func Regularity(db *model.DB, region *model.Region, p *model.Placement) float64 {
	var total float64
	for _, name := range db.Macros() {
		rec, ok := p.Get(name)
		if !ok {
			continue
		}
		total += rec.Area() * region.Cost(rec.X, rec.Y, rec.Width, rec.Height)
	}
	return total
}

// Overlaps returns every pair of records whose grid footprints intersect,
// ignoring pairs of two ports. Pairs are ordered by name.
func Overlaps(db *model.DB, p *model.Placement) [][2]string {
	recs := p.Records()
	var out [][2]string
	for i := range recs {
		a := recs[i]
		aPort := isPort(db, a.Name)
		for j := i + 1; j < len(recs); j++ {
			b := recs[j]
			if aPort && isPort(db, b.Name) {
				continue
			}
			if a.GridX < b.GridX+b.ScaledWidth && b.GridX < a.GridX+a.ScaledWidth &&
				a.GridY < b.GridY+b.ScaledHeight && b.GridY < a.GridY+a.ScaledHeight {
				out = append(out, [2]string{a.Name, b.Name})
			}
		}
	}
	return out
}

func isPort(db *model.DB, name string) bool {
	n, ok := db.Node(name)
	return ok && n.IsPort
}
