package triangulate

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/regularize"
)

func polygon(t *testing.T, points ...r2.Point) *mesh.Mesh {
	t.Helper()
	loop := make([]int, len(points))
	for i := range loop {
		loop[i] = i
	}
	m, err := mesh.FromLoops(points, [][]int{loop})
	require.NoError(t, err)
	return m
}

// interiorTriangles counts bounded faces and fails on any that is not a
// triangle.
func interiorTriangles(t *testing.T, m *mesh.Mesh) int {
	t.Helper()
	count := 0
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		assert.True(t, m.IsTriangle(f), "face at node %d has %d corners", f, m.FaceSize(f))
		count++
	}
	return count
}

func hasEdge(m *mesh.Mesh, p, q r2.Point) bool {
	for n := range m.Edges() {
		a, b := m.UV(n), m.UV(m.Mate(n))
		if (a == p && b == q) || (a == q && b == p) {
			return true
		}
	}
	return false
}

func TestFanConvex(t *testing.T) {
	const n = 7
	points := make([]r2.Point, n)
	for i := range points {
		a := 2 * math.Pi * float64(i) / n
		points[i] = r2.Point{X: math.Cos(a), Y: math.Sin(a)}
	}
	m := polygon(t, points...)

	res := Fan(m, Options{})
	assert.Equal(t, 1, res.Faces)
	assert.Equal(t, n-3, res.Diagonals)
	assert.Equal(t, n-2, interiorTriangles(t, m))
	require.NoError(t, m.Validate())

	for f := range m.Faces() {
		if !m.Has(f, mesh.MaskExterior) {
			assert.Greater(t, m.SignedArea(f), 0.0)
		} else {
			assert.Equal(t, n, m.FaceSize(f), "exterior face untouched")
		}
	}
}

func TestFanSkipsTriangles(t *testing.T) {
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)
	before := m.Counts()

	res := Fan(m, Options{})
	assert.Zero(t, res.Faces)
	assert.Equal(t, before, m.Counts())
}

func TestRegularizeThenFan(t *testing.T) {
	tests := []struct {
		name     string
		points   []r2.Point
		positive bool
	}{
		{
			name:   "hexagon",
			points: []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 1, Y: 3}, {X: 0, Y: 2}},
		},
		{
			name: "crown",
			points: []r2.Point{
				{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 3}, {X: 5, Y: 1.5}, {X: 4, Y: 3},
				{X: 3, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 1.2}, {X: 0, Y: 3},
			},
			positive: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := polygon(t, tt.points...)
			_, err := regularize.Regularize(m, regularize.Options{})
			require.NoError(t, err)

			Fan(m, Options{})
			require.NoError(t, m.Validate())
			assert.Equal(t, len(tt.points)-2, interiorTriangles(t, m))
			if tt.positive {
				for f := range m.Faces() {
					if !m.Has(f, mesh.MaskExterior) {
						assert.Greater(t, m.SignedArea(f), 0.0)
					}
				}
			}
		})
	}
}

func TestSubdivideAllEdges(t *testing.T) {
	m := polygon(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 2})

	var events []mesh.Event
	m.SetListener(mesh.ListenerFunc(func(_ *mesh.Mesh, ev mesh.Event, _, _ mesh.NodeID) {
		events = append(events, ev)
	}))

	res, err := Subdivide(m, Midpoints, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Splits)
	assert.Equal(t, 3, res.Diagonals)
	require.NoError(t, m.Validate())

	c := m.Counts()
	assert.Equal(t, 6, c.Vertices, "one shared vertex per split edge")
	assert.Equal(t, 9, c.Edges)
	assert.Equal(t, 4, interiorTriangles(t, m))

	// The inner triangle joins the three midpoints.
	mids := []r2.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.True(t, hasEdge(m, mids[0], mids[1]))
	assert.True(t, hasEdge(m, mids[1], mids[2]))
	assert.True(t, hasEdge(m, mids[2], mids[0]))

	count := func(ev mesh.Event) int {
		n := 0
		for _, e := range events {
			if e == ev {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 3, count(mesh.EventTestEdge))
	assert.Equal(t, 3, count(mesh.EventSplitEdge))
	assert.Equal(t, 3, count(mesh.EventJoinNew))
}

func TestSubdivideOneEdge(t *testing.T) {
	m := polygon(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 2})
	bottom := SplitterFunc(func(m *mesh.Mesh, n mesh.NodeID) (r2.Point, bool) {
		a, b := m.UV(n), m.UV(m.Mate(n))
		return a.Add(b).Mul(0.5), a.Y == 0 && b.Y == 0
	})

	res, err := Subdivide(m, bottom, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Splits)
	assert.Equal(t, 1, res.Diagonals)
	require.NoError(t, m.Validate())
	assert.Equal(t, 2, interiorTriangles(t, m))
	assert.True(t, hasEdge(m, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 2}))
}

func TestSubdivideTwoEdges(t *testing.T) {
	// Only the two long edges are split; the quad left after cutting the
	// corner at B is split along A-Y, the shorter diagonal.
	m := polygon(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0}, r2.Point{X: 0, Y: 1})

	var joins []mesh.Event
	m.SetListener(mesh.ListenerFunc(func(_ *mesh.Mesh, ev mesh.Event, _, _ mesh.NodeID) {
		if ev != mesh.EventTestEdge && ev != mesh.EventSplitEdge {
			joins = append(joins, ev)
		}
	}))

	res, err := Subdivide(m, MaxLength(2), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Splits)
	require.NoError(t, m.Validate())
	assert.Equal(t, 3, interiorTriangles(t, m))

	x, y := r2.Point{X: 2, Y: 0}, r2.Point{X: 2, Y: 0.5}
	assert.True(t, hasEdge(m, x, y))
	assert.True(t, hasEdge(m, r2.Point{X: 0, Y: 0}, y))
	assert.False(t, hasEdge(m, x, r2.Point{X: 0, Y: 1}))
	assert.Equal(t, []mesh.Event{mesh.EventJoinNew, mesh.EventJoinMixed}, joins)
}

func TestSubdivideGrid(t *testing.T) {
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)
	before := m.Counts()

	res, err := Subdivide(m, Midpoints, Options{})
	require.NoError(t, err)
	assert.Equal(t, before.Edges, res.Splits)
	require.NoError(t, m.Validate())

	c := m.Counts()
	assert.Equal(t, before.Vertices+before.Edges, c.Vertices)
	assert.Equal(t, 32, interiorTriangles(t, m))
	assert.Equal(t, 2, c.Euler())
}

func TestMaxLength(t *testing.T) {
	m := polygon(t, r2.Point{X: 0, Y: 0}, r2.Point{X: 3, Y: 0}, r2.Point{X: 0, Y: 1})
	_, ok := MaxLength(3).Split(m, 0)
	assert.False(t, ok, "edge of exactly the limit is kept")
	p, ok := MaxLength(2.5).Split(m, 0)
	assert.True(t, ok)
	assert.Equal(t, r2.Point{X: 1.5, Y: 0}, p)
}
