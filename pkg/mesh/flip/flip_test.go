package flip

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// twoTriangles builds triangles PQR and QPS over labels 0..3.
func twoTriangles(t *testing.T, p, q, r, s r2.Point) *mesh.Mesh {
	t.Helper()
	m, err := mesh.FromTriangles([]r2.Point{p, q, r, s}, [][3]int{{0, 1, 2}, {1, 0, 3}})
	require.NoError(t, err)
	return m
}

// edge returns the node running from label a to label b.
func edge(t *testing.T, m *mesh.Mesh, a, b int) mesh.NodeID {
	t.Helper()
	for i := 0; i < m.Len(); i++ {
		n := mesh.NodeID(i)
		if m.Label(n) == a && m.Label(m.FSucc(n)) == b {
			return n
		}
	}
	t.Fatalf("no edge %d->%d", a, b)
	return mesh.Nil
}

// edgeSet returns the sorted undirected label pairs of all edges.
func edgeSet(m *mesh.Mesh) [][2]int {
	var out [][2]int
	for n := range m.Edges() {
		a, b := m.Label(n), m.Label(m.Mate(n))
		if a > b {
			a, b = b, a
		}
		out = append(out, [2]int{a, b})
	}
	slices.SortFunc(out, func(x, y [2]int) int {
		if x[0] != y[0] {
			return x[0] - y[0]
		}
		return x[1] - y[1]
	})
	return out
}

func TestQuadAt(t *testing.T) {
	m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: -1})
	a := edge(t, m, 0, 1)
	q, ok := QuadAt(m, a)
	require.True(t, ok)

	P, Q, R, S := q.Points()
	assert.Equal(t, r2.Point{X: 0, Y: 0}, P)
	assert.Equal(t, r2.Point{X: 2, Y: 0}, Q)
	assert.Equal(t, r2.Point{X: 1, Y: 1}, R)
	assert.Equal(t, r2.Point{X: 1, Y: -1}, S)
	assert.Equal(t, m.Mate(a), q.D)

	// Hull edges are fixed.
	_, ok = QuadAt(m, edge(t, m, 1, 2))
	assert.False(t, ok)
	assert.False(t, Flippable(m, m.Mate(edge(t, m, 1, 2))))
}

func TestSwapPreservesCounts(t *testing.T) {
	m, err := mesh.Grid(5, 5)
	require.NoError(t, err)
	before := m.Counts()

	rng := rand.New(rand.NewPCG(1, 2))
	swaps := 0
	for i := 0; i < 500; i++ {
		if Swap(m, mesh.NodeID(rng.IntN(m.Len()))) {
			swaps++
		}
	}
	require.Positive(t, swaps)
	require.NoError(t, m.Validate())
	assert.Equal(t, before, m.Counts())
	assert.Equal(t, 2, m.Counts().Euler())
}

func TestSwapSelfInverse(t *testing.T) {
	m, err := mesh.Grid(3, 3)
	require.NoError(t, err)
	original := edgeSet(m)

	for n := range m.Edges() {
		if !Flippable(m, n) {
			continue
		}
		require.True(t, Swap(m, n))
		assert.NotEqual(t, original, edgeSet(m))
		require.True(t, Swap(m, n))
		assert.Equal(t, original, edgeSet(m), "edge %d", n)
	}
	require.NoError(t, m.Validate())
}

func TestFlipRelinksDiagonal(t *testing.T) {
	m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: -1})
	a := edge(t, m, 0, 1)

	var marked []mesh.NodeID
	always := PredicateFunc(func(Quad) bool { return true })
	require.True(t, Flip(m, a, always, func(n mesh.NodeID) { marked = append(marked, n) }))
	require.NoError(t, m.Validate())

	assert.Equal(t, 3, m.Label(a), "A now leaves S")
	assert.Equal(t, 2, m.Label(m.FSucc(a)), "and runs to R")
	assert.True(t, m.IsTriangle(a))
	assert.True(t, m.IsTriangle(m.Mate(a)))
	assert.Len(t, marked, 4)
	var outer [][2]int
	for _, n := range marked {
		assert.NotEqual(t, a, n, "diagonal is not reported")
		assert.NotEqual(t, m.Mate(a), n, "diagonal is not reported")
		x, y := m.Label(n), m.Label(m.FSucc(n))
		outer = append(outer, [2]int{min(x, y), max(x, y)})
	}
	assert.ElementsMatch(t, [][2]int{{0, 2}, {1, 2}, {0, 3}, {1, 3}}, outer)
	assert.Greater(t, m.SignedArea(a), 0.0)
	assert.Greater(t, m.SignedArea(m.Mate(a)), 0.0)

	never := PredicateFunc(func(Quad) bool { return false })
	assert.False(t, Flip(m, a, never, nil))
}

func TestAspectRatioSkewedQuad(t *testing.T) {
	// A sheared square whose long diagonal 0-2 is the worse choice.
	pts := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 1}}
	m, err := mesh.FromTriangles(pts, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)

	res, err := Improve(m, AspectRatio{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Flips)
	require.NoError(t, m.Validate())
	assert.Contains(t, edgeSet(m), [2]int{1, 3})
	assert.NotContains(t, edgeSet(m), [2]int{0, 2})

	res, err = Improve(m, AspectRatio{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Flips, "stable fixed point")
}

func TestAspectRatioNearZeroThreshold(t *testing.T) {
	assert.True(t, improves(-0.1, -0.05))
	assert.False(t, improves(0.02, 0.024), "needs 25% gain near zero")
	assert.True(t, improves(0.02, 0.026))
	assert.True(t, improves(0.3, 0.31))
	assert.False(t, improves(0.3, 0.3))
}

func TestAspectRatioPeriodic(t *testing.T) {
	// The same sheared quad, translated so it straddles the U seam of a
	// unit-period cylinder scaled by 1/8.
	wrap := func(p r2.Point) r2.Point {
		x := p.X/8 + 0.9
		if x >= 1 {
			x--
		}
		return r2.Point{X: x, Y: p.Y / 8}
	}
	pts := []r2.Point{wrap(r2.Point{X: 0, Y: 0}), wrap(r2.Point{X: 1, Y: 0}), wrap(r2.Point{X: 3, Y: 1}), wrap(r2.Point{X: 2, Y: 1})}
	m, err := mesh.FromTriangles(pts, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)

	pred := AspectRatio{PeriodU: 1}
	q, ok := QuadAt(m, edge(t, m, 0, 2))
	require.True(t, ok)
	assert.True(t, pred.ShouldFlip(q))

	// The ratio is scale invariant.
	assert.True(t, AspectRatio{PeriodU: 1, ScaleU: 3, ScaleV: 3}.ShouldFlip(q))
}

func TestInCircleStable(t *testing.T) {
	// S lies inside the circle through P, Q, R.
	m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: -0.5})
	a := edge(t, m, 0, 1)

	require.True(t, Flip(m, a, InCircle{}, nil))
	assert.False(t, Flip(m, a, InCircle{}, nil), "no flip back once locally Delaunay")

	// Cocircular corners never flip.
	sq := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 0, Y: 1}, r2.Point{X: 1, Y: 0})
	assert.False(t, Flip(sq, edge(t, sq, 0, 1), InCircle{}, nil))
}

func TestMappedAspectRatio(t *testing.T) {
	flat := MapperFunc(func(_ mesh.NodeID, uv r2.Point) (r3.Vector, error) {
		return r3.Vector{X: uv.X, Y: uv.Y}, nil
	})

	t.Run("repairs fold", func(t *testing.T) {
		// S lies inside PQR, so QPS is inverted; both flipped triangles agree.
		m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: 0.5})
		assert.True(t, Flip(m, edge(t, m, 0, 1), MappedAspectRatio{Mapper: flat}, nil))
	})

	t.Run("rejects inversion", func(t *testing.T) {
		m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 4, Y: -1})
		assert.False(t, Flip(m, edge(t, m, 0, 1), MappedAspectRatio{Mapper: flat}, nil))
	})

	t.Run("improves shape", func(t *testing.T) {
		m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0}, r2.Point{X: 2, Y: 0.5}, r2.Point{X: 2, Y: -0.5})
		assert.True(t, Flip(m, edge(t, m, 0, 1), MappedAspectRatio{Mapper: flat}, nil))
	})

	t.Run("mapper failure declines", func(t *testing.T) {
		m := twoTriangles(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0}, r2.Point{X: 2, Y: 0.5}, r2.Point{X: 2, Y: -0.5})
		failing := MapperFunc(func(mesh.NodeID, r2.Point) (r3.Vector, error) {
			return r3.Vector{}, errors.New("outside surface")
		})
		assert.False(t, Flip(m, edge(t, m, 0, 1), MappedAspectRatio{Mapper: failing}, nil))
	})
}

func TestAxisExtent(t *testing.T) {
	pts := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 1}}
	m, err := mesh.FromTriangles(pts, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)
	q, ok := QuadAt(m, edge(t, m, 0, 2))
	require.True(t, ok)

	assert.True(t, AxisExtent{Axis: AxisU}.ShouldFlip(q), "diagonal 1-3 spans less U")
	assert.False(t, AxisExtent{Axis: AxisV}.ShouldFlip(q), "both diagonals span one unit of V")
	assert.Equal(t, "v", AxisV.String())
}
