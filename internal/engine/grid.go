package engine

import "math"

// Grid is a dense gridNum x gridNum cost mask. Cell (x, y) is stored at
// x*N + y, so a "row" is a fixed x and a "column" a fixed y.
type Grid struct {
	N    int
	Data []float64
}

// NewGrid returns a zeroed n x n grid.
func NewGrid(n int) *Grid {
	return &Grid{N: n, Data: make([]float64, n*n)}
}

// At returns the value of cell (x, y).
func (g *Grid) At(x, y int) float64 { return g.Data[x*g.N+y] }

// Set stores v in cell (x, y).
func (g *Grid) Set(x, y int, v float64) { g.Data[x*g.N+y] = v }

// AddX adds v to every cell whose x index is x.
func (g *Grid) AddX(x int, v float64) {
	row := g.Data[x*g.N : (x+1)*g.N]
	for i := range row {
		row[i] += v
	}
}

// AddY adds v to every cell whose y index is y.
func (g *Grid) AddY(y int, v float64) {
	for x := 0; x < g.N; x++ {
		g.Data[x*g.N+y] += v
	}
}

// AddScaled adds w*other to g cell by cell.
func (g *Grid) AddScaled(other *Grid, w float64) {
	for i, v := range other.Data {
		g.Data[i] += w * v
	}
}

// Normalize z-scores the grid in place. See Normalize.
func (g *Grid) Normalize() *Grid {
	normalizeInPlace(g.Data)
	return g
}

// Normalize returns (x - mean) / std using the population standard
// deviation. When the spread is below 1e-5 the result is all zeros, so a
// flat signal never produces NaN or Inf.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	normalizeInPlace(out)
	return out
}

func normalizeInPlace(values []float64) {
	if len(values) == 0 {
		return
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))
	if math.Abs(std) <= 1e-5 || math.IsNaN(std) {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i, v := range values {
		values[i] = (v - mean) / std
	}
}
