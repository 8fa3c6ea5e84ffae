package meshio

import (
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Output is the serialised form of a processed mesh.
type Output struct {
	Name     string       `json:"name,omitempty"`
	Vertices [][2]float64 `json:"vertices"`
	// Labels holds the input vertex index of each vertex, or -1 for
	// vertices inserted by subdivision.
	Labels []int `json:"labels"`
	// Faces are the bounded faces as counter-clockwise vertex indices.
	Faces [][]int `json:"faces"`
	// Boundary lists the boundary edges as vertex index pairs.
	Boundary [][2]int `json:"boundary,omitempty"`
}

// Export numbers the vertices of m in iteration order and lists its faces.
func Export(m *mesh.Mesh, name string) *Output {
	idx := VertexIndex(m)
	out := &Output{Name: name, Vertices: [][2]float64{}, Labels: []int{}, Faces: [][]int{}}
	for v := range m.Vertices() {
		p := m.UV(v)
		out.Vertices = append(out.Vertices, [2]float64{p.X, p.Y})
		out.Labels = append(out.Labels, m.Label(v))
	}
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		var face []int
		for n := range m.FaceLoop(f) {
			face = append(face, idx[n])
		}
		out.Faces = append(out.Faces, face)
	}
	for n := range m.Edges() {
		if m.Has(n, mesh.MaskBoundary) {
			out.Boundary = append(out.Boundary, [2]int{idx[n], idx[m.Mate(n)]})
		}
	}
	return out
}

// VertexIndex maps every node to the index of its vertex, numbering
// vertices in [mesh.Mesh.Vertices] order.
func VertexIndex(m *mesh.Mesh) []int {
	idx := make([]int, m.Len())
	i := 0
	for v := range m.Vertices() {
		for n := range m.VertexLoop(v) {
			idx[n] = i
		}
		i++
	}
	return idx
}

// Import rebuilds a triangle mesh from an [Output], restoring the input
// labels. Every face must be a triangle.
func Import(out *Output) (*mesh.Mesh, error) {
	pts := make([]r2.Point, len(out.Vertices))
	for i, v := range out.Vertices {
		pts[i] = r2.Point{X: v[0], Y: v[1]}
	}
	tris := make([][3]int, len(out.Faces))
	for i, f := range out.Faces {
		if len(f) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidMesh, "face %d has %d corners", i, len(f))
		}
		tris[i] = [3]int{f[0], f[1], f[2]}
	}
	m, err := mesh.FromTriangles(pts, tris)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMeshCorrupt, err, "rebuild mesh")
	}
	if len(out.Labels) == len(out.Vertices) {
		for v := range m.Vertices() {
			m.SetLabel(v, out.Labels[m.Label(v)])
		}
	}
	return m, nil
}
