package model

import (
	"math"
	"testing"
)

// regionDB has one 2x2 macro on a 10x10 canvas and a cell area giving a
// core radius of 2.
func regionDB() *DB {
	return NewDB("test", []Node{{Name: "A", Width: 2, Height: 2}}, nil, 4*math.Pi, 10, 10)
}

func TestNewRegion(t *testing.T) {
	db := regionDB()
	r := NewRegion(db, 1, 64/(4*math.Pi+4))

	if r.CenterX != 5 || r.CenterY != 5 {
		t.Errorf("expected center (5,5), got (%v,%v)", r.CenterX, r.CenterY)
	}
	if math.Abs(r.Radius-2) > 1e-9 || math.Abs(r.L2-6) > 1e-9 {
		t.Errorf("expected radius 2 and l2 6, got %v and %v", r.Radius, r.L2)
	}
	if math.Abs(r.Left-1) > 1e-9 || math.Abs(r.Right-9) > 1e-9 ||
		math.Abs(r.Bottom-1) > 1e-9 || math.Abs(r.Top-9) > 1e-9 {
		t.Errorf("expected boundary [1,9]x[1,9], got %+v", r)
	}

	wide := NewRegion(db, 1, 100)
	if wide.Left != 0 || wide.Right != 10 || wide.Bottom != 0 || wide.Top != 10 {
		t.Errorf("boundary should be clipped to the canvas, got %+v", wide)
	}
}

func TestRegion_Cost(t *testing.T) {
	r := NewRegion(regionDB(), 1, 64/(4*math.Pi+4))

	tests := []struct {
		name                     string
		left, bottom, w, h, want float64
	}{
		{"inside core", 4, 4.5, 2, 2, 6 / (0.5 + 1e-5)},
		{"on the boundary corner", 1.5, 1, 1, 1, 0},
		{"near the left side", 2, 3, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Cost(tt.left, tt.bottom, tt.w, tt.h)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cost = %v, want %v", got, tt.want)
			}
		})
	}
}
