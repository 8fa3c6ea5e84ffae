package flip

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// shearedGrid returns an nx by ny grid sheared along U so that every cell's
// built-in diagonal is the long one.
func shearedGrid(t testing.TB, nx, ny int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Grid(nx, ny)
	require.NoError(t, err)
	m.Transform(func(p r2.Point) r2.Point { return r2.Point{X: p.X + 2*p.Y, Y: p.Y} })
	return m
}

func TestFlipLimit(t *testing.T) {
	tests := []struct {
		edges int
		want  int
	}{
		{0, 0},
		{10, 200},
		{1200, 24000},
		{6000, 600000},
	}
	for _, tt := range tests {
		if got := FlipLimit(tt.edges); got != tt.want {
			t.Errorf("FlipLimit(%d) = %d, want %d", tt.edges, got, tt.want)
		}
	}
}

func TestImproveTerminates(t *testing.T) {
	tests := []struct {
		name   string
		nx, ny int
		long   bool
	}{
		{"10 edges", 3, 1, false},
		{"1e3 edges", 22, 22, false},
		{"1e5 edges", 183, 183, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.long && testing.Short() {
				t.Skip("large mesh")
			}
			m := shearedGrid(t, tt.nx, tt.ny)
			before := m.Counts()

			res, err := Improve(m, AspectRatio{}, Options{})
			require.NoError(t, err)
			assert.Positive(t, res.Flips)
			assert.LessOrEqual(t, res.Flips, res.Limit)
			assert.False(t, res.Capped)
			assert.Equal(t, before, m.Counts())
			require.NoError(t, m.Validate())

			// A converged mesh is a fixed point.
			again, err := Improve(m, AspectRatio{}, Options{})
			require.NoError(t, err)
			assert.Zero(t, again.Flips)
		})
	}
}

func TestImproveCapsNonConvergingPredicate(t *testing.T) {
	m, err := mesh.Grid(3, 3)
	require.NoError(t, err)
	before := m.Counts()

	always := PredicateFunc(func(Quad) bool { return true })
	res, err := Improve(m, always, Options{})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Flips, FlipLimit(m.EdgeCount()))
	assert.Equal(t, before, m.Counts())
	require.NoError(t, m.Validate())
}

func TestImproveMaxFlips(t *testing.T) {
	m := shearedGrid(t, 4, 4)

	res, err := Improve(m, AspectRatio{}, Options{MaxFlips: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Flips)
	assert.Equal(t, 1, res.Limit)
	assert.True(t, res.Capped)
}

func TestImproveRestrictedEdges(t *testing.T) {
	m := shearedGrid(t, 4, 4)

	var diag mesh.NodeID = mesh.Nil
	for n := range m.Edges() {
		if Flippable(m, n) {
			diag = n
			break
		}
	}
	require.NotEqual(t, mesh.Nil, diag)

	never := PredicateFunc(func(Quad) bool { return false })
	res, err := Improve(m, never, Options{Edges: []mesh.NodeID{diag, mesh.Nil}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Zero(t, res.Flips)
}

func BenchmarkImprove(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		m := shearedGrid(b, 40, 40)
		b.StartTimer()
		if _, err := Improve(m, InCircle{}, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
