package quality

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

func TestAspectRatio(t *testing.T) {
	equilateral := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: math.Sqrt(3) / 2}}
	assert.InDelta(t, 1.0, AspectRatio(equilateral[0], equilateral[1], equilateral[2]), 1e-12)
	assert.InDelta(t, -1.0, AspectRatio(equilateral[0], equilateral[2], equilateral[1]), 1e-12)

	// Scale invariance.
	s := func(p r2.Point) r2.Point { return p.Mul(17) }
	assert.InDelta(t, 1.0, AspectRatio(s(equilateral[0]), s(equilateral[1]), s(equilateral[2])), 1e-12)

	// Degenerate inputs.
	o := r2.Point{}
	assert.Zero(t, AspectRatio(o, o, o))
	assert.Zero(t, AspectRatio(o, r2.Point{X: 1}, r2.Point{X: 2}))
}

func TestAspectRatio3(t *testing.T) {
	a := r3.Vector{X: 0, Y: 0, Z: 0}
	b := r3.Vector{X: 1, Y: 0, Z: 0}
	c := r3.Vector{X: 0.5, Y: 0, Z: math.Sqrt(3) / 2}
	assert.InDelta(t, 1.0, AspectRatio3(a, b, c), 1e-12)
	assert.InDelta(t, 1.0, AspectRatio3(a, c, b), 1e-12, "unsigned")
	assert.Zero(t, AspectRatio3(a, a, a))
}

func TestInCircle(t *testing.T) {
	a, b, c := r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 2}
	tests := []struct {
		name string
		d    r2.Point
		sign int
	}{
		{"inside", r2.Point{X: 1, Y: 1}, 1},
		{"outside", r2.Point{X: 3, Y: 3}, -1},
		{"on circle", r2.Point{X: 2, Y: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, bound := InCircle(a, b, c, tt.d)
			switch tt.sign {
			case 1:
				assert.Greater(t, det, 1e-12*bound)
			case -1:
				assert.Less(t, det, -1e-12*bound)
			default:
				assert.LessOrEqual(t, math.Abs(det), 1e-12*bound)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		d, period, want float64
	}{
		{0.9, 1, -0.1},
		{-0.9, 1, 0.1},
		{0.3, 1, 0.3},
		{5, 0, 5},
		{7, 2 * math.Pi, 7 - 2*math.Pi},
	}
	for _, tt := range tests {
		if got := Wrap(tt.d, tt.period); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tt.d, tt.period, got, tt.want)
		}
	}
	assert.Equal(t, r2.Point{X: 0.25, Y: 3}, Periodic(r2.Point{X: 0.9, Y: 1}, r2.Point{X: 0.15, Y: 4}, 1, 0))
}

func TestSummarize(t *testing.T) {
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)

	s := Summarize(m)
	assert.Equal(t, 8, s.Triangles)
	assert.Zero(t, s.Inverted)
	// Right isosceles triangles: area 1/2, squared edges 1+1+2.
	want := 4 * math.Sqrt(3) * 0.5 / 4
	assert.InDelta(t, want, s.Min, 1e-12)
	assert.InDelta(t, want, s.Max, 1e-12)
	assert.InDelta(t, want, s.Mean, 1e-12)
	assert.InDelta(t, 0, s.StdDev, 1e-12)
	assert.InDelta(t, want, s.Median, 1e-12)

	assert.Equal(t, Summary{}, SummarizeRatios(nil))
	assert.Equal(t, 1, SummarizeRatios([]float64{0.5, -0.1}).Inverted)
}
