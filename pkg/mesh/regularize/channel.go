package regularize

import (
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// below reports whether p precedes q in sweep order: V first, then U.
func below(p, q r2.Point) bool {
	return p.Y < q.Y || (p.Y == q.Y && p.X < q.X)
}

// rising reports whether n's edge goes up in sweep order, computed from
// coordinates.
func rising(m *mesh.Mesh, n mesh.NodeID) bool {
	return below(m.UV(n), m.UV(m.FSucc(n)))
}

// channel is an open monotone region of the sweep.
//
// left is a falling edge on the region's left boundary and right a rising
// edge on its right boundary; the region lies between them. top is the node
// at the highest vertex already swept inside the region, the end point of
// any diagonal inserted from below.
type channel struct {
	left, right, top mesh.NodeID
}

// raise moves c.top to n when n's vertex is higher.
func (s *sweep) raise(c *channel, n mesh.NodeID) {
	if below(s.m.UV(c.top), s.m.UV(n)) {
		c.top = n
	}
}

// advance walks both boundaries of c upward past vertices below p and
// reports whether either side moved.
func (s *sweep) advance(c *channel, p r2.Point) bool {
	m := s.m
	moved := false
	for below(m.UV(c.left), p) {
		prev := m.FPred(c.left)
		if s.up(prev) {
			break
		}
		s.raise(c, c.left)
		c.left = prev
		moved = true
	}
	for {
		next := m.FSucc(c.right)
		if !below(m.UV(next), p) || !s.up(next) {
			break
		}
		c.right = next
		s.raise(c, c.right)
		moved = true
	}
	return moved
}

// peak returns the node at which c's left boundary is stuck: its vertex has
// been swept and the boundary rises again beyond it.
func (s *sweep) peak(c *channel, p r2.Point) (mesh.NodeID, bool) {
	if !below(s.m.UV(c.left), p) || !s.up(s.m.FPred(c.left)) {
		return mesh.Nil, false
	}
	return c.left, true
}

// crossing returns the U coordinate of n's edge at height v. Horizontal
// edges report their upper end point. At an end point's height the result
// is that end point's U exactly.
func crossing(m *mesh.Mesh, n mesh.NodeID, v float64) (float64, bool) {
	a, b := m.UV(n), m.UV(m.FSucc(n))
	if below(b, a) {
		a, b = b, a
	}
	if v < a.Y || v > b.Y {
		return 0, false
	}
	dv := b.Y - a.Y
	switch {
	case dv == 0, v == b.Y:
		return b.X, true
	case v == a.Y:
		return a.X, true
	}
	return a.X + (b.X-a.X)*(v-a.Y)/dv, true
}

// brackets reports whether p lies strictly between c's boundaries.
func (s *sweep) brackets(c *channel, p r2.Point) bool {
	ul, ok := crossing(s.m, c.left, p.Y)
	if !ok {
		return false
	}
	ur, ok := crossing(s.m, c.right, p.Y)
	if !ok {
		return false
	}
	return ul < p.X && p.X < ur
}

// sameFace reports whether a and b lie on one face cycle.
func sameFace(m *mesh.Mesh, a, b mesh.NodeID) bool {
	for n := range m.FaceLoop(a) {
		if n == b {
			return true
		}
	}
	return false
}

// components tracks which nodes are connected. A diagonal may only join two
// face cycles that are not yet connected, as when a hole is attached to
// its outer boundary; joining two cycles of one component would cross an
// existing face.
type components []mesh.NodeID

func newComponents(m *mesh.Mesh) components {
	c := make(components, m.Len())
	for i := range c {
		c[i] = mesh.NodeID(i)
	}
	for i := range c {
		n := mesh.NodeID(i)
		c.union(n, m.FSucc(n))
		c.union(n, m.VSucc(n))
	}
	return c
}

func (c components) find(n mesh.NodeID) mesh.NodeID {
	for c[n] != n {
		c[n] = c[c[n]]
		n = c[n]
	}
	return n
}

func (c components) union(a, b mesh.NodeID) {
	if ra, rb := c.find(a), c.find(b); ra != rb {
		c[ra] = rb
	}
}

// joined records the diagonal na-nb inserted between a and b.
func (c *components) joined(a, b, na, nb mesh.NodeID) {
	for mesh.NodeID(len(*c)) <= max(na, nb) {
		*c = append(*c, mesh.NodeID(len(*c)))
	}
	c.union(a, b)
	c.union(na, a)
	c.union(nb, a)
}
