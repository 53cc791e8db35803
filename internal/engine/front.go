package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/macroplace/internal/model"
)

// ErrNoLegalSeed is returned when no random guide produced a legal placement.
var ErrNoLegalSeed = errors.New("no legal seed placement found")

// RandomGuide returns a placement with every macro on a uniformly random
// cell that keeps its footprint on the canvas. Ports sit at their netlist
// position.
func RandomGuide(db *model.DB, bench model.Benchmark, rng *rand.Rand) *model.Placement {
	p := model.NewPlacement(bench.GridSize)
	for _, name := range db.Names() {
		n := db.MustNode(name)
		if n.IsPort {
			p.Set(model.NewRecordAt(n, n.X, n.Y, bench.GridSize))
			continue
		}
		gx := rng.Intn(max(1, bench.GridNum-n.ScaledWidth(bench.GridSize)+1))
		gy := rng.Intn(max(1, bench.GridNum-n.ScaledHeight(bench.GridSize)+1))
		p.Set(model.NewRecord(n, gx, gy, float64(gx)*bench.GridSize, float64(gy)*bench.GridSize, bench.GridSize))
	}
	return p
}

// Front produces a seed placement from scratch: several random guides are
// placed with the wire mask alone, and the best one by HPWL is refined with
// uniform random swaps accepted on strict HPWL improvement.
type Front struct {
	Logger   *log.Logger
	Observer Observer

	db       *model.DB
	bench    model.Benchmark
	settings model.Settings
	placer   *Placer
	order    []string
	rng      *rand.Rand
}

// NewFront prepares a front search for db.
func NewFront(db *model.DB, bench model.Benchmark, settings model.Settings) (*Front, error) {
	placer, err := NewPlacer(db, nil, nil, bench, model.Weights{Alpha: 1})
	if err != nil {
		return nil, err
	}
	return &Front{
		Logger:   log.New(io.Discard),
		Observer: ObserverFuncs{},
		db:       db,
		bench:    bench,
		settings: settings,
		placer:   placer,
		order:    RankArea(db),
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}, nil
}

// Run performs GuideRounds random guides followed by FrontRounds swaps.
// Trace values are raw HPWL.
func (f *Front) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{Eval: model.EvalRecord{Value: math.Inf(1)}}
	iter := 0

	for round := 0; round < max(1, f.settings.GuideRounds); round++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		iter++
		guide := RandomGuide(f.db, f.bench, f.rng)
		res := f.placer.Place(f.order, guide)
		f.record(out, iter, res)
	}
	if out.Best == nil {
		return out, fmt.Errorf("%d guides: %w", max(1, f.settings.GuideRounds), ErrNoLegalSeed)
	}

	swapper := NewUniformDisturbance(f.db, f.rng)
	for round := 0; round < f.settings.FrontRounds; round++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		iter++
		working := out.Best.Clone()
		if _, _, err := swapper.Apply(working); err != nil {
			if errors.Is(err, ErrTooFewMacros) {
				break
			}
			return out, err
		}
		f.record(out, iter, f.placer.Place(f.order, working))
	}
	return out, nil
}

func (f *Front) record(out *Outcome, iter int, res Result) {
	if !res.Legal {
		trace := model.NewTraceRecord(iter, model.EvalRecord{Value: math.Inf(1)}, false, false)
		out.Trace = append(out.Trace, trace)
		f.Observer.OnIteration(trace)
		f.Logger.Debug("illegal placement", "iteration", iter, "node", res.FailedNode)
		return
	}
	hpwl := HPWL(f.db, res.Placement)
	eval := model.EvalRecord{Value: hpwl, HPWL: hpwl}
	accepted := eval.Less(out.Eval)
	trace := model.NewTraceRecord(iter, eval, true, accepted)
	out.Trace = append(out.Trace, trace)
	f.Observer.OnIteration(trace)
	if accepted {
		out.Best, out.Eval = res.Placement, eval
		out.Accepted++
		f.Observer.OnImproved(iter, res.Placement, eval)
		f.Logger.Info("front improved", "iteration", iter, "hpwl", hpwl)
	}
}
