package meshio

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
)

const plate = `{
  "name": "plate",
  "vertices": [[0,0], [4,0], [4,3], [0,3], [1,1], [2,1], [2,2]],
  "loops": [[0,1,2,3], [4,5,6]]
}`

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(plate))
	require.NoError(t, err)
	assert.Equal(t, "plate", d.Name)
	assert.Len(t, d.Vertices, 7)
	assert.Len(t, d.Loops, 2)

	m, err := d.Mesh()
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	c := m.Counts()
	assert.Equal(t, 7, c.Vertices)
	assert.Equal(t, 7, c.Edges)
	assert.Equal(t, 2, c.Components)
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"vertices": [], "polygons": []}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestDocumentValidate(t *testing.T) {
	square := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tests := []struct {
		name string
		doc  Document
		ok   bool
	}{
		{"loops", Document{Vertices: square, Loops: [][]int{{0, 1, 2, 3}}}, true},
		{"triangles", Document{Vertices: square, Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}}}, true},
		{"both", Document{Vertices: square, Loops: [][]int{{0, 1, 2}}, Triangles: [][3]int{{0, 1, 2}}}, false},
		{"no vertices", Document{Loops: [][]int{{0, 1, 2}}}, false},
		{"short loop", Document{Vertices: square, Loops: [][]int{{0, 1}}}, false},
		{"bad triangle index", Document{Vertices: square, Triangles: [][3]int{{0, 1, 4}}}, false},
		{"no loops", Document{Vertices: square}, false},
		{"control name", Document{Name: "a\x00b", Vertices: square, Loops: [][]int{{0, 1, 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), "got %v", err)
		})
	}
}

func TestDocumentMeshDegenerate(t *testing.T) {
	d := Document{Vertices: [][2]float64{{0, 0}, {1, 1}, {2, 2}}, Loops: [][]int{{0, 1, 2}}}
	_, err := d.Mesh()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidMesh))
	assert.ErrorIs(t, err, mesh.ErrDegenerateLoop)
}

func TestDocumentHash(t *testing.T) {
	a, err := ReadJSON(strings.NewReader(plate))
	require.NoError(t, err)
	b, err := ReadJSON(strings.NewReader(plate))
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Vertices[0][0] = -1
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestReadSVG(t *testing.T) {
	const src = `<svg xmlns="http://www.w3.org/2000/svg" id="bracket" width="100" height="100">
  <g>
    <polygon points="0,0 40,0 40,30 0,30 0,0"/>
    <rect x="10" y="10" width="5" height="5"/>
  </g>
</svg>`
	d, err := ReadSVG(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "bracket", d.Name)
	require.Len(t, d.Loops, 2)
	assert.Equal(t, []int{0, 1, 2, 3}, d.Loops[0], "closing point dropped")
	assert.Equal(t, []int{4, 5, 6, 7}, d.Loops[1])
	assert.Equal(t, [2]float64{40, -30}, d.Vertices[2], "y axis flipped")
	assert.Equal(t, [2]float64{15, -15}, d.Vertices[6])

	m, err := d.Mesh()
	require.NoError(t, err)
	require.NoError(t, m.Validate())
}

func TestReadSVGErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"no shapes", `<svg><circle r="3"/></svg>`},
		{"odd coordinates", `<svg><polygon points="0,0 1,0 1"/></svg>`},
		{"bad number", `<svg><polygon points="0,0 x,0 1,1"/></svg>`},
		{"empty rect", `<svg><rect width="0" height="2"/></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSVG(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestExport(t *testing.T) {
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)

	out := Export(m, "grid")
	assert.Equal(t, "grid", out.Name)
	assert.Len(t, out.Vertices, 9)
	assert.Len(t, out.Faces, 8)
	assert.Len(t, out.Boundary, 8)

	labels := slices.Clone(out.Labels)
	slices.Sort(labels)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, labels)

	for _, f := range out.Faces {
		require.Len(t, f, 3)
		a, b, c := out.Vertices[f[0]], out.Vertices[f[1]], out.Vertices[f[2]]
		area := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		assert.Greater(t, area, 0.0, "face %v is counter-clockwise", f)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, out))
	var back Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, out.Faces, back.Faces)
}

func TestImportRoundTrip(t *testing.T) {
	m, err := mesh.Grid(3, 2)
	require.NoError(t, err)
	out := Export(m, "")

	back, err := Import(out)
	require.NoError(t, err)
	require.NoError(t, back.Validate())
	assert.Equal(t, m.Counts(), back.Counts())

	again := Export(back, "")
	assert.ElementsMatch(t, out.Labels, again.Labels)
	assert.Len(t, again.Faces, len(out.Faces))
}

func TestImportRejectsPolygons(t *testing.T) {
	out := &Output{
		Vertices: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Faces:    [][]int{{0, 1, 2, 3}},
	}
	_, err := Import(out)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
