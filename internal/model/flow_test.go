package model

import (
	"reflect"
	"testing"
)

func TestFlowFromMatrix(t *testing.T) {
	names := []string{"A", "B", "C"}
	matrix := [][]float64{
		{0, 0.5, 0.001},
		{0.2, 0, 0},
		{0, 0, 0},
	}
	f := FlowFromMatrix(names, matrix, 0.01)

	if f.Weight("A", "B") != 0.5 || f.Weight("B", "A") != 0.5 {
		t.Errorf("expected symmetric weight 0.5, got %v / %v", f.Weight("A", "B"), f.Weight("B", "A"))
	}
	if f.Weight("A", "C") != 0 {
		t.Errorf("entry below threshold kept: %v", f.Weight("A", "C"))
	}
	if f.Len() != 3 || len(f.Neighbors("C")) != 0 {
		t.Errorf("expected C as isolated node, got len %d, neighbors %v", f.Len(), f.Neighbors("C"))
	}
}

func TestFlow_SetAndTotals(t *testing.T) {
	f := NewFlow()
	f.Set("A", "C", 1)
	f.Set("A", "B", 5)
	f.Set("A", "B", 2)
	f.Set("A", "A", 9)

	want := []FlowEdge{{To: "B", Weight: 2}, {To: "C", Weight: 1}}
	if !reflect.DeepEqual(f.Neighbors("A"), want) {
		t.Errorf("expected %v, got %v", want, f.Neighbors("A"))
	}
	if f.Weight("A", "A") != 0 {
		t.Error("self flow should be ignored")
	}
	if f.Total("A") != 3 {
		t.Errorf("expected total 3, got %v", f.Total("A"))
	}
	if got := f.TotalWithin("A", func(n string) bool { return n != "C" }); got != 2 {
		t.Errorf("expected restricted total 2, got %v", got)
	}
	if !reflect.DeepEqual(f.Names(), []string{"A", "B", "C"}) {
		t.Errorf("unexpected names %v", f.Names())
	}
}

func TestFlow_NilReadsAsEmpty(t *testing.T) {
	var f *Flow
	if f.Len() != 0 || f.Names() != nil || f.Neighbors("A") != nil {
		t.Error("nil flow should have no nodes")
	}
	if f.Weight("A", "B") != 0 || f.Total("A") != 0 {
		t.Error("nil flow should have no weight")
	}
	if got := f.TotalWithin("A", func(string) bool { return true }); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
