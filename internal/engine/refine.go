package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/macroplace/internal/model"
)

// Observer receives refinement progress. OnIteration is called once for
// the seed (iteration 0) and once per iteration; OnImproved whenever a new
// best placement is accepted, including the seed.
type Observer interface {
	OnIteration(rec model.TraceRecord)
	OnImproved(iteration int, best *model.Placement, eval model.EvalRecord)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Iteration func(rec model.TraceRecord)
	Improved  func(iteration int, best *model.Placement, eval model.EvalRecord)
}

func (o ObserverFuncs) OnIteration(rec model.TraceRecord) {
	if o.Iteration != nil {
		o.Iteration(rec)
	}
}

func (o ObserverFuncs) OnImproved(iteration int, best *model.Placement, eval model.EvalRecord) {
	if o.Improved != nil {
		o.Improved(iteration, best, eval)
	}
}

// Outcome is the result of a refinement run.
type Outcome struct {
	Best     *model.Placement
	Eval     model.EvalRecord
	Trace    []model.TraceRecord
	Accepted int
}

// Refiner runs the disturb, re-place, evaluate, accept loop. Each run is
// single-threaded; use separate Refiners for concurrent runs.
type Refiner struct {
	Logger   *log.Logger
	Observer Observer

	settings  model.Settings
	db        *model.DB
	placer    *Placer
	evaluator *Evaluator
	disturb   *Disturbance
	order     []string
}

// NewRefiner wires a placer, an evaluator and a flow-weighted disturbance
// for one run. The visitation order is ranked once here.
func NewRefiner(db *model.DB, flow *model.Flow, region *model.Region, bench model.Benchmark, settings model.Settings) (*Refiner, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if flow == nil {
		flow = model.NewFlow()
	}
	placer, err := NewPlacer(db, flow, region, bench, settings.Mask)
	if err != nil {
		return nil, err
	}
	order, err := Rank(db, flow, settings)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(settings.Seed))
	return &Refiner{
		Logger:    log.New(io.Discard),
		Observer:  ObserverFuncs{},
		settings:  settings,
		db:        db,
		placer:    placer,
		evaluator: NewEvaluator(db, flow, region, settings.Evaluate),
		disturb:   NewDisturbance(db, flow, rng),
		order:     order,
	}, nil
}

// Order returns the ranked visitation order.
func (r *Refiner) Order() []string { return r.order }

// Run evaluates seed, makes it the best placement and then performs the
// configured number of iterations. Every iteration disturbs a copy of the
// current best; the result is accepted only when legal and strictly
// better. A cancelled ctx stops the loop and returns the best so far
// together with ctx.Err().
func (r *Refiner) Run(ctx context.Context, seed *model.Placement) (*Outcome, error) {
	if seed == nil {
		return nil, fmt.Errorf("refine: no seed placement")
	}
	best := seed.Clone()
	bestEval := r.evaluator.Evaluate(best)
	out := &Outcome{Best: best, Eval: bestEval}

	first := model.NewTraceRecord(0, bestEval, true, true)
	out.Trace = append(out.Trace, first)
	r.Observer.OnIteration(first)
	r.Observer.OnImproved(0, best, bestEval)
	r.Logger.Info("seed evaluated", "hpwl", bestEval.HPWL, "dataflow", bestEval.Dataflow, "regularity", bestEval.Regularity)

	ports := len(r.db.Ports())
	for i := 1; i <= r.settings.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		working := best.Clone()
		a, b, err := r.disturb.Apply(working)
		if err != nil {
			return out, fmt.Errorf("iteration %d: %w", i, err)
		}
		order := r.order
		if r.settings.PrioritizeSwapped {
			order = prioritize(order, ports, a, b)
		}

		res := r.placer.Place(order, working)
		var trace model.TraceRecord
		if res.Legal {
			eval := r.evaluator.Evaluate(res.Placement)
			accepted := eval.Less(out.Eval)
			trace = model.NewTraceRecord(i, eval, true, accepted)
			if accepted {
				best = res.Placement
				out.Best, out.Eval = best, eval
				out.Accepted++
				r.Observer.OnImproved(i, best, eval)
				r.Logger.Info("improved", "iteration", i, "value", eval.Value, "hpwl", eval.HPWL, "dataflow", eval.Dataflow)
			}
		} else {
			trace = model.NewTraceRecord(i, model.EvalRecord{Value: math.Inf(1)}, false, false)
			r.Logger.Debug("illegal placement", "iteration", i, "node", res.FailedNode)
		}
		trace.Swapped = [2]string{a, b}
		out.Trace = append(out.Trace, trace)
		r.Observer.OnIteration(trace)
		r.Logger.Debug("iteration", "i", i, "swap", a+"<->"+b, "legal", trace.Legal, "accepted", trace.Accepted)
	}
	return out, nil
}

// Iterate repeatedly re-places the current placement, feeding each result
// back as the reference, and stops at the first illegal result. It returns
// the last legal placement.
func (r *Refiner) Iterate(ctx context.Context, seed *model.Placement) (*Outcome, error) {
	if seed == nil {
		return nil, fmt.Errorf("iterate: no seed placement")
	}
	current := seed.Clone()
	eval := r.evaluator.Evaluate(current)
	out := &Outcome{Best: current, Eval: eval}
	first := model.NewTraceRecord(0, eval, true, true)
	out.Trace = append(out.Trace, first)
	r.Observer.OnIteration(first)
	r.Observer.OnImproved(0, current, eval)

	for i := 1; i <= r.settings.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res := r.placer.Place(r.order, current)
		if !res.Legal {
			trace := model.NewTraceRecord(i, model.EvalRecord{Value: math.Inf(1)}, false, false)
			out.Trace = append(out.Trace, trace)
			r.Observer.OnIteration(trace)
			r.Logger.Warn("illegal placement, stopping", "iteration", i, "node", res.FailedNode)
			break
		}
		current = res.Placement
		eval = r.evaluator.Evaluate(current)
		trace := model.NewTraceRecord(i, eval, true, true)
		out.Best, out.Eval = current, eval
		out.Accepted++
		out.Trace = append(out.Trace, trace)
		r.Observer.OnIteration(trace)
		r.Observer.OnImproved(i, current, eval)
	}
	return out, nil
}
