package model

import (
	"fmt"
	"time"
)

// EvalRecord is the outcome of evaluating one placement. Value is the
// running-normalized combined objective; the other fields are raw metrics.
type EvalRecord struct {
	Value      float64 `json:"value"`
	HPWL       float64 `json:"hpwl"`
	Dataflow   float64 `json:"dataflow"`
	Regularity float64 `json:"regularity"`
}

// Less reports whether e is strictly better than other.
func (e EvalRecord) Less(other EvalRecord) bool {
	return e.Value < other.Value
}

func (e EvalRecord) String() string {
	return fmt.Sprintf("value=%.4f hpwl=%.1f dataflow=%.1f regularity=%.1f",
		e.Value, e.HPWL, e.Dataflow, e.Regularity)
}

// TraceRecord is emitted once per refinement iteration. Iteration 0 is the
// evaluation of the seed placement.
type TraceRecord struct {
	Iteration  int       `json:"iteration"`
	Value      float64   `json:"value"`
	HPWL       float64   `json:"hpwl"`
	Dataflow   float64   `json:"dataflow"`
	Regularity float64   `json:"regularity"`
	WallClock  time.Time `json:"wall_clock"`
	Legal      bool      `json:"legal"`
	Accepted   bool      `json:"accepted"`
	Swapped    [2]string `json:"swapped,omitempty"`
}

// NewTraceRecord copies the metrics of eval into a trace record.
func NewTraceRecord(iteration int, eval EvalRecord, legal, accepted bool) TraceRecord {
	return TraceRecord{
		Iteration:  iteration,
		Value:      eval.Value,
		HPWL:       eval.HPWL,
		Dataflow:   eval.Dataflow,
		Regularity: eval.Regularity,
		WallClock:  time.Now(),
		Legal:      legal,
		Accepted:   accepted,
	}
}

// Eval returns the metrics of the trace record as an EvalRecord.
func (t TraceRecord) Eval() EvalRecord {
	return EvalRecord{Value: t.Value, HPWL: t.HPWL, Dataflow: t.Dataflow, Regularity: t.Regularity}
}
