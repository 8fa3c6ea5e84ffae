package triangulate

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Splitter decides whether an edge gets a new vertex and where.
type Splitter interface {
	// Split is called once per undirected edge with one of its nodes and
	// returns the position of the new vertex, or false to keep the edge.
	Split(m *mesh.Mesh, n mesh.NodeID) (r2.Point, bool)
}

// SplitterFunc adapts a function to the [Splitter] interface.
type SplitterFunc func(m *mesh.Mesh, n mesh.NodeID) (r2.Point, bool)

// Split calls f(m, n).
func (f SplitterFunc) Split(m *mesh.Mesh, n mesh.NodeID) (r2.Point, bool) { return f(m, n) }

// MaxLength splits every edge longer than its value at the midpoint.
type MaxLength float64

// Split implements [Splitter].
func (l MaxLength) Split(m *mesh.Mesh, n mesh.NodeID) (r2.Point, bool) {
	a, b := m.UV(n), m.UV(m.Mate(n))
	if a.Sub(b).Norm() <= float64(l) {
		return r2.Point{}, false
	}
	return a.Add(b).Mul(0.5), true
}

// Midpoints splits every edge at its midpoint.
var Midpoints = MaxLength(math.Inf(-1))

// SubdivideResult reports what a call to [Subdivide] did.
type SubdivideResult struct {
	// Splits is the number of edges that received a new vertex.
	Splits int `json:"splits"`
	// Diagonals is the number of edges inserted to retriangulate.
	Diagonals int `json:"diagonals"`
}

// Subdivide offers every edge not entirely exterior to s, inserts the
// requested vertices with [mesh.Mesh.SplitEdge] and retriangulates every
// bounded face that was a triangle before the call:
//
//   - one split edge: the new vertex is joined to the opposite corner
//   - two split edges: the new vertices are joined, cutting off the corner
//     between them, and the remaining quad is split along its shorter
//     diagonal
//   - three split edges: the new vertices are joined into an inner triangle
//
// Events are sent to the mesh listener: [mesh.EventTestEdge] before each
// edge is offered, [mesh.EventSplitEdge] after a split, and
// [mesh.EventJoinNew] or [mesh.EventJoinMixed] for each diagonal depending
// on whether it joins two new vertices or a new and an old one.
//
// The only error is [mesh.ErrNoFreeMask], returned before any edit.
func Subdivide(m *mesh.Mesh, s Splitter, opts Options) (SubdivideResult, error) {
	var res SubdivideResult
	err := m.WithMask(func(fresh mesh.Mask) error {
		var tris []mesh.NodeID
		for f := range m.Faces() {
			if !m.Has(f, mesh.MaskExterior) && m.IsTriangle(f) {
				tris = append(tris, f)
			}
		}

		edges := slices.Collect(m.Edges())
		for _, n := range edges {
			mt := m.Mate(n)
			if m.Has(n, mesh.MaskExterior) && m.Has(mt, mesh.MaskExterior) {
				continue
			}
			m.Notify(mesh.EventTestEdge, n, mt)
			p, ok := s.Split(m, n)
			if !ok {
				continue
			}
			a, b := m.SplitEdge(n, p)
			m.Set(a, fresh)
			m.Set(b, fresh)
			m.Notify(mesh.EventSplitEdge, a, b)
			res.Splits++
		}

		r := retriangulator{m: m, fresh: fresh}
		for _, t := range tris {
			r.face(t)
		}
		res.Diagonals = r.joins
		return nil
	})
	opts.logger().Debug("subdivide", "splits", res.Splits, "diagonals", res.Diagonals)
	return res, err
}

type retriangulator struct {
	m     *mesh.Mesh
	fresh mesh.Mask
	joins int
}

func (r *retriangulator) isNew(n mesh.NodeID) bool { return r.m.Has(n, r.fresh) }

// join inserts a diagonal and reports it with the event matching its end
// points.
func (r *retriangulator) join(a, b mesh.NodeID) (mesh.NodeID, mesh.NodeID) {
	ev := mesh.EventJoinMixed
	switch {
	case r.isNew(a) && r.isNew(b):
		ev = mesh.EventJoinNew
	case !r.isNew(a) && !r.isNew(b):
		ev = mesh.EventJoinOld
	}
	fa, fb := r.isNew(a), r.isNew(b)
	na, nb := r.m.Join(a, b)
	if fa {
		r.m.Set(na, r.fresh)
	}
	if fb {
		r.m.Set(nb, r.fresh)
	}
	r.m.Notify(ev, na, nb)
	r.joins++
	return na, nb
}

// face retriangulates the face that held the triangle at t.
func (r *retriangulator) face(t mesh.NodeID) {
	m := r.m
	var corners []mesh.NodeID
	for n := range m.FaceLoop(t) {
		if !r.isNew(n) {
			corners = append(corners, n)
		}
	}
	if len(corners) != 3 {
		return
	}

	switch m.FaceSize(t) - 3 {
	case 1:
		// [A X B C]
		x := r.firstNew(t)
		b := m.FSucc(x)
		r.join(x, m.FSucc(b))

	case 2:
		// [A X B Y C] with C->A the edge left whole.
		c := mesh.Nil
		for _, n := range corners {
			if !r.isNew(m.FSucc(n)) {
				c = n
			}
		}
		a := m.FSucc(c)
		x := m.FSucc(a)
		y := m.FSucc(m.FSucc(x))
		nx, _ := r.join(x, y)
		// The remaining quad is [nx Y C A].
		if dist2(m, a, y) <= dist2(m, nx, c) {
			r.join(a, y)
		} else {
			r.join(nx, c)
		}

	case 3:
		// [A X B Y C Z]
		a := corners[0]
		x := m.FSucc(a)
		y := m.FSucc(m.FSucc(x))
		z := m.FSucc(m.FSucc(y))
		nx, _ := r.join(x, y)
		r.join(y, z)
		r.join(z, nx)
	}
}

func (r *retriangulator) firstNew(t mesh.NodeID) mesh.NodeID {
	for n := range r.m.FaceLoop(t) {
		if r.isNew(n) {
			return n
		}
	}
	return mesh.Nil
}

func dist2(m *mesh.Mesh, a, b mesh.NodeID) float64 {
	d := m.UV(a).Sub(m.UV(b))
	return d.Dot(d)
}
