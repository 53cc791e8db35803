package engine

import (
	"errors"
	"math"
	"math/rand"

	"github.com/piwi3910/macroplace/internal/model"
)

// ErrTooFewMacros is returned when a swap needs two macros but the netlist
// has fewer.
var ErrTooFewMacros = errors.New("need at least two macros to swap")

// Disturbance picks macro pairs to swap. Macros with more dataflow are
// picked more often: each candidate weighs log(1 + total flow). When no
// macro has any flow the choice is uniform.
type Disturbance struct {
	candidates []string
	weights    []float64
	rng        *rand.Rand
}

// NewDisturbance builds the sampling weights for every macro of db.
func NewDisturbance(db *model.DB, flow *model.Flow, rng *rand.Rand) *Disturbance {
	d := &Disturbance{
		candidates: db.Macros(),
		weights:    make([]float64, len(db.Macros())),
		rng:        rng,
	}
	if flow != nil {
		for i, name := range d.candidates {
			d.weights[i] = math.Log1p(flow.Total(name))
		}
	}
	return d
}

// NewUniformDisturbance picks every macro with equal probability.
func NewUniformDisturbance(db *model.DB, rng *rand.Rand) *Disturbance {
	return NewDisturbance(db, nil, rng)
}

// Pick draws two distinct macros without replacement.
func (d *Disturbance) Pick() (string, string, error) {
	if len(d.candidates) < 2 {
		return "", "", ErrTooFewMacros
	}
	first := d.draw(-1)
	second := d.draw(first)
	return d.candidates[first], d.candidates[second], nil
}

// Apply swaps a freshly picked pair in p and returns their names.
func (d *Disturbance) Apply(p *model.Placement) (string, string, error) {
	a, b, err := d.Pick()
	if err != nil {
		return "", "", err
	}
	if err := p.Swap(a, b); err != nil {
		return "", "", err
	}
	return a, b, nil
}

// draw samples an index proportional to weight, skipping index skip.
func (d *Disturbance) draw(skip int) int {
	var total float64
	for i, w := range d.weights {
		if i != skip {
			total += w
		}
	}
	if total <= 0 {
		if skip < 0 {
			return d.rng.Intn(len(d.candidates))
		}
		i := d.rng.Intn(len(d.candidates) - 1)
		if i >= skip {
			i++
		}
		return i
	}

	r := d.rng.Float64() * total
	last := -1
	for i, w := range d.weights {
		if i == skip || w <= 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}
