package flip

import (
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// fixed marks nodes whose edge may never be flipped.
const fixed = mesh.MaskExterior | mesh.MaskBoundary

// Quad is the neighbourhood of a flippable edge: two triangles (A,B,C) and
// (D,E,F) sharing the edge A–D, with D = Mate(A), B = FSucc(A),
// C = FSucc(B), E = FSucc(D) and F = FSucc(E).
//
// Writing P, Q, R, S for the vertices of A, B, C and F, the current
// triangles are PQR and QPS and the flipped ones are PSR and SQR.
type Quad struct {
	Mesh             *mesh.Mesh
	A, B, C, D, E, F mesh.NodeID
}

// QuadAt returns the quad around n's edge. The second result is false when
// either side of the edge is not a triangle, the edge is exterior or fixed,
// or the two opposite corners share a vertex.
func QuadAt(m *mesh.Mesh, n mesh.NodeID) (Quad, bool) {
	d := m.Mate(n)
	if m.Any(n, fixed) || m.Any(d, fixed) {
		return Quad{}, false
	}
	if !m.IsTriangle(n) || !m.IsTriangle(d) {
		return Quad{}, false
	}
	q := Quad{Mesh: m, A: n, D: d}
	q.B = m.FSucc(n)
	q.C = m.FSucc(q.B)
	q.E = m.FSucc(d)
	q.F = m.FSucc(q.E)
	if q.C == d || sameVertex(m, q.C, q.F) {
		return Quad{}, false
	}
	return q, true
}

// Points returns the UV coordinates P, Q, R, S of the quad's corners.
func (q Quad) Points() (p, qq, r, s r2.Point) {
	m := q.Mesh
	return m.UV(q.A), m.UV(q.B), m.UV(q.C), m.UV(q.F)
}

// Flippable reports whether n's edge currently separates two interior
// triangles that could be flipped.
func Flippable(m *mesh.Mesh, n mesh.NodeID) bool {
	_, ok := QuadAt(m, n)
	return ok
}

// Flip replaces n's edge with the other diagonal of its quad when pred
// agrees, and reports whether it did.
//
// On success mark, if non-nil, receives one node of each of the quad's four
// outer edges so a worklist can revisit them. Those are the only edges whose
// quads changed. The new diagonal is not reported: its quad is the one pred
// just accepted, so testing it again would only undo the flip under a
// symmetric predicate. Node IDs are preserved: after the flip A runs from S
// to R and D from R to S.
func Flip(m *mesh.Mesh, n mesh.NodeID, pred Predicate, mark func(mesh.NodeID)) bool {
	q, ok := QuadAt(m, n)
	if !ok || !pred.ShouldFlip(q) {
		return false
	}
	q.swap(mark)
	return true
}

// Swap flips n's edge unconditionally when its quad is valid.
func Swap(m *mesh.Mesh, n mesh.NodeID) bool {
	q, ok := QuadAt(m, n)
	if !ok {
		return false
	}
	q.swap(nil)
	return true
}

func (q Quad) swap(mark func(mesh.NodeID)) {
	m := q.Mesh

	// Detach the diagonal from P and Q; the quad becomes one face with a
	// dangling edge.
	m.Twist(q.A, q.E)
	m.Twist(q.D, q.B)

	if mark != nil {
		mark(q.B)
		mark(q.C)
		mark(q.E)
		mark(q.F)
	}

	// Reattach it between S and R.
	m.Twist(q.A, q.F)
	m.Twist(q.D, q.C)
	m.CopyVertexData(q.A, q.F)
	m.CopyVertexData(q.D, q.C)
}

func sameVertex(m *mesh.Mesh, a, b mesh.NodeID) bool {
	for v := range m.VertexLoop(a) {
		if v == b {
			return true
		}
	}
	return false
}
