package regularize

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

func build(t *testing.T, points []r2.Point, loops ...[]int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.FromLoops(points, loops)
	require.NoError(t, err)
	return m
}

// checkRegular asserts the structural invariants and one minimum and one
// maximum per bounded face.
func checkRegular(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	require.NoError(t, m.Validate())
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		mins, maxs := Extrema(m, f)
		assert.Equal(t, 1, mins, "minima of face at node %d", f)
		assert.Equal(t, 1, maxs, "maxima of face at node %d", f)
	}
	assert.True(t, Regular(m))
	c := m.Counts()
	assert.Equal(t, 2*c.Components, c.Euler())
}

func TestRegularizeHexagon(t *testing.T) {
	// A(0,0) B(1,1) C(2,0) D(2,2) E(1,3) F(0,2): B is a reflex maximum
	// between the two bottom minima A and C.
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 1, Y: 3}, {X: 0, Y: 2}}
	m := build(t, points, []int{0, 1, 2, 3, 4, 5})
	before := m.Counts()
	require.False(t, Regular(m))

	res, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagonals)
	assert.Zero(t, res.Unconnected)
	checkRegular(t, m)

	after := m.Counts()
	assert.Equal(t, before.Edges+1, after.Edges)
	assert.Equal(t, before.Faces+1, after.Faces)

	// The new edge runs between F and B.
	var found bool
	for n := range m.Edges() {
		a, b := m.Label(n), m.Label(m.Mate(n))
		if (a == 5 && b == 1) || (a == 1 && b == 5) {
			found = true
		}
	}
	assert.True(t, found, "diagonal F-B")

	// Coordinates are restored after the rotated pass.
	for n := range m.Vertices() {
		if l := m.Label(n); l >= 0 {
			assert.Equal(t, points[l], m.UV(n))
		}
	}
}

func TestRegularizeCrown(t *testing.T) {
	// Three notches hang from the top edge; each is a downward minimum.
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 3}, {X: 5, Y: 1.5}, {X: 4, Y: 3},
		{X: 3, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 1.2}, {X: 0, Y: 3},
	}
	m := build(t, points, []int{0, 1, 2, 3, 4, 5, 6, 7, 8})

	res, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Diagonals)
	checkRegular(t, m)
}

func TestRegularizeHole(t *testing.T) {
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4},
		{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3},
	}
	m := build(t, points, []int{0, 1, 2, 3}, []int{4, 5, 6, 7})
	require.Equal(t, 2, m.Counts().Components)

	res, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Diagonals, "one diagonal per sweep direction")
	checkRegular(t, m)
	assert.Equal(t, 1, m.Counts().Components, "hole attached to the outer boundary")
}

func TestRegularizeTriangulationUnchanged(t *testing.T) {
	m, err := mesh.Grid(4, 3)
	require.NoError(t, err)
	before := m.Counts()

	res, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Diagonals)
	assert.Equal(t, before, m.Counts())
	checkRegular(t, m)
}

func TestRegularizeJitteredTriangulation(t *testing.T) {
	for seed := range uint64(200) {
		rng := rand.New(rand.NewPCG(seed, 7))
		m, err := mesh.Grid(6, 6)
		require.NoError(t, err)
		for v := range m.Vertices() {
			p := m.UV(v)
			m.SetUV(v, r2.Point{X: p.X + 0.2*(rng.Float64()-0.5), Y: p.Y + 0.2*(rng.Float64()-0.5)})
		}
		require.True(t, Regular(m), "seed %d: jittered grid", seed)
		before := m.Counts()

		res, err := Regularize(m, Options{})
		require.NoError(t, err)
		assert.Zero(t, res.Diagonals, "seed %d", seed)
		assert.Zero(t, res.Unconnected, "seed %d", seed)
		assert.Equal(t, before, m.Counts(), "seed %d", seed)
		checkRegular(t, m)
	}
}

// nodeWithLabel returns the node of face f at the vertex labelled l.
func nodeWithLabel(t *testing.T, m *mesh.Mesh, f mesh.NodeID, l int) mesh.NodeID {
	t.Helper()
	for n := range m.FaceLoop(f) {
		if m.Label(n) == l {
			return n
		}
	}
	t.Fatalf("no node labelled %d on face %d", l, f)
	return mesh.Nil
}

func TestRegularizePolygonWithChord(t *testing.T) {
	const k = 8
	for seed := range uint64(200) {
		rng := rand.New(rand.NewPCG(seed, 11))
		turn, radius := 2*math.Pi*rng.Float64(), 0.5+rng.Float64()
		center := r2.Point{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5}
		points := make([]r2.Point, k)
		loop := make([]int, k)
		for i := range k {
			a := turn + 2*math.Pi*float64(i)/k
			points[i] = center.Add(r2.Point{X: math.Cos(a), Y: math.Sin(a)}.Mul(radius))
			loop[i] = i
		}
		m := build(t, points, loop)

		var inner mesh.NodeID
		for f := range m.Faces() {
			if !m.Has(f, mesh.MaskExterior) {
				inner = f
			}
		}
		from := rng.IntN(k)
		to := (from + 2 + rng.IntN(k-3)) % k
		m.Join(nodeWithLabel(t, m, inner, from), nodeWithLabel(t, m, inner, to))
		require.True(t, Regular(m), "seed %d: convex halves", seed)
		before := m.Counts()

		res, err := Regularize(m, Options{})
		require.NoError(t, err)
		assert.Zero(t, res.Diagonals, "seed %d: chord %d-%d", seed, from, to)
		assert.Equal(t, before, m.Counts(), "seed %d", seed)
		checkRegular(t, m)
	}
}

func TestCrossingEndPointsExact(t *testing.T) {
	m := mesh.New()
	// 0.7 + (0.1-0.7)*1 rounds to 0.09999999999999998.
	n, _ := m.NewEdge(r2.Point{X: 0.7, Y: 0.2}, r2.Point{X: 0.1, Y: 0.9})

	u, ok := crossing(m, n, 0.9)
	require.True(t, ok)
	assert.Equal(t, 0.1, u)

	u, ok = crossing(m, n, 0.2)
	require.True(t, ok)
	assert.Equal(t, 0.7, u)

	_, ok = crossing(m, n, 1)
	assert.False(t, ok)
}

func TestConnectCoincidentTop(t *testing.T) {
	// Two lobes pinched at P = (1,1): vertex 1 is the reflex top of the
	// lower notch and vertex 5 the tip of the upper one.
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 3},
		{X: 1.5, Y: 3}, {X: 1, Y: 1}, {X: 0.5, Y: 3}, {X: 0, Y: 3},
	}
	m := build(t, points, []int{0, 1, 2, 3, 4, 5, 6, 7})
	var inner mesh.NodeID
	for f := range m.Faces() {
		if !m.Has(f, mesh.MaskExterior) {
			inner = f
		}
	}
	top, tip := nodeWithLabel(t, m, inner, 1), nodeWithLabel(t, m, inner, 5)
	before := m.Counts()

	bit, err := m.GrabMask()
	require.NoError(t, err)
	defer m.DropMask(bit)
	s := &sweep{m: m, upBit: bit}
	s.classify()
	c := &channel{left: m.FPred(top), right: top, top: top}
	s.channels = []*channel{c}
	s.connect(c, tip)

	assert.Equal(t, 1, s.unconnected)
	assert.Zero(t, s.diagonals)
	assert.Equal(t, before, m.Counts())
	assert.Len(t, s.channels, 1)
}

func TestSameFace(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1.3, Y: 0.1}, {X: 1, Y: 1}, {X: -0.2, Y: 0.9}}
	m, err := mesh.FromTriangles(points, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)

	var faces []mesh.NodeID
	for f := range m.Faces() {
		if !m.Has(f, mesh.MaskExterior) {
			faces = append(faces, f)
		}
	}
	require.Len(t, faces, 2)

	a0, a2 := nodeWithLabel(t, m, faces[0], 0), nodeWithLabel(t, m, faces[0], 2)
	b0 := nodeWithLabel(t, m, faces[1], 0)
	assert.True(t, sameFace(m, a0, a2))
	assert.False(t, sameFace(m, a0, b0), "shared vertex, different faces")

	s := &sweep{m: m, comps: newComponents(m)}
	assert.True(t, s.joinable(a0, a2))
	assert.False(t, s.joinable(a0, b0), "diagonal would cross the shared edge")
}

func TestJoinableHole(t *testing.T) {
	points := []r2.Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4},
		{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3},
	}
	m := build(t, points, []int{0, 1, 2, 3}, []int{4, 5, 6, 7})
	s := &sweep{m: m, comps: newComponents(m)}

	var outer, hole mesh.NodeID = mesh.Nil, mesh.Nil
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		for n := range m.FaceLoop(f) {
			switch m.Label(n) {
			case 3:
				outer = n
			case 4:
				hole = n
			}
		}
	}
	require.NotEqual(t, mesh.Nil, outer)
	require.NotEqual(t, mesh.Nil, hole)
	assert.False(t, sameFace(m, outer, hole))
	assert.True(t, s.joinable(outer, hole), "separate components")

	na, nb := m.Join(outer, hole)
	s.comps.joined(outer, hole, na, nb)
	assert.Equal(t, s.comps.find(outer), s.comps.find(hole))
	assert.Equal(t, s.comps.find(na), s.comps.find(nb))
}

func TestRegularizeReleasesMask(t *testing.T) {
	m := build(t, []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, []int{0, 1, 2})
	free := m.FreeMasks()
	_, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, free, m.FreeMasks())
}

func TestRegularizeNotifies(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 1, Y: 3}, {X: 0, Y: 2}}
	m := build(t, points, []int{0, 1, 2, 3, 4, 5})

	var events []mesh.Event
	m.SetListener(mesh.ListenerFunc(func(_ *mesh.Mesh, ev mesh.Event, a, b mesh.NodeID) {
		events = append(events, ev)
		assert.Equal(t, b, m.Mate(a))
	}))
	_, err := Regularize(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, []mesh.Event{mesh.EventJoinOld}, events)
}

func TestExtrema(t *testing.T) {
	tests := []struct {
		name       string
		points     []r2.Point
		mins, maxs int
	}{
		{"triangle", []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, 1, 1},
		{"square", []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, 1, 1},
		{"w", []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := make([]int, len(tt.points))
			for i := range loop {
				loop[i] = i
			}
			m := build(t, tt.points, loop)
			mins, maxs := Extrema(m, 0)
			if mins != tt.mins || maxs != tt.maxs {
				t.Errorf("Extrema() = %d, %d, want %d, %d", mins, maxs, tt.mins, tt.maxs)
			}
		})
	}
}
