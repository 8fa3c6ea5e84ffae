package mesh

import (
	"iter"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// NodeID addresses one edge-use node in a [Mesh] arena. IDs are dense,
// start at zero and stay valid for the lifetime of the mesh: the algorithms
// in this module relink nodes but never free them.
type NodeID int32

// Nil is the NodeID that refers to no node.
const Nil NodeID = -1

// NoLabel is the label carried by vertices created by [Mesh.SplitEdge].
const NoLabel = -1

// node is one directed traversal of an edge around the face on its left.
//
// fs is the next node counter-clockwise around the same face, vs is the next
// node counter-clockwise around the same vertex and mate is the node on the
// other side of the edge. The arena maintains VSucc(FSucc(n)) == Mate(n)
// for every node, which lets predecessors be derived instead of stored.
type node struct {
	fs, vs, mate NodeID
	mask         Mask
	label        int
	uv           r2.Point
	xyz          r3.Vector
	hasXYZ       bool
}

// Mesh is an arena of edge-use nodes forming a planar subdivision.
//
// The zero value is not usable; create meshes with [New], [FromLoops] or
// [FromTriangles]. Mesh is not safe for concurrent use.
type Mesh struct {
	nodes    []node
	free     Mask
	listener Listener
}

// New returns an empty mesh with all non-reserved mask bits available.
func New() *Mesh {
	return &Mesh{free: ^reservedMasks}
}

// Len returns the number of nodes in the arena (twice the edge count).
func (m *Mesh) Len() int { return len(m.nodes) }

// EdgeCount returns the number of undirected edges.
func (m *Mesh) EdgeCount() int { return len(m.nodes) / 2 }

// Valid reports whether n addresses a node of this mesh.
func (m *Mesh) Valid(n NodeID) bool { return n >= 0 && int(n) < len(m.nodes) }

// FSucc returns the next node counter-clockwise around n's face.
func (m *Mesh) FSucc(n NodeID) NodeID { return m.nodes[n].fs }

// FPred returns the node whose face successor is n.
func (m *Mesh) FPred(n NodeID) NodeID { return m.nodes[m.nodes[n].vs].mate }

// VSucc returns the next node counter-clockwise around n's vertex.
func (m *Mesh) VSucc(n NodeID) NodeID { return m.nodes[n].vs }

// VPred returns the node whose vertex successor is n.
func (m *Mesh) VPred(n NodeID) NodeID { return m.nodes[m.nodes[n].mate].fs }

// Mate returns the node traversing n's edge in the opposite direction.
func (m *Mesh) Mate(n NodeID) NodeID { return m.nodes[n].mate }

// UV returns the parametric coordinate of n's vertex.
func (m *Mesh) UV(n NodeID) r2.Point { return m.nodes[n].uv }

// SetUV moves n's vertex: every node around the vertex is updated.
func (m *Mesh) SetUV(n NodeID, p r2.Point) {
	for v := range m.VertexLoop(n) {
		m.nodes[v].uv = p
	}
}

// XYZ returns the world coordinate of n's vertex and whether one was set.
func (m *Mesh) XYZ(n NodeID) (r3.Vector, bool) {
	return m.nodes[n].xyz, m.nodes[n].hasXYZ
}

// SetXYZ attaches a world coordinate to every node around n's vertex.
func (m *Mesh) SetXYZ(n NodeID, p r3.Vector) {
	for v := range m.VertexLoop(n) {
		m.nodes[v].xyz = p
		m.nodes[v].hasXYZ = true
	}
}

// Label returns the caller-assigned vertex label of n, or [NoLabel].
func (m *Mesh) Label(n NodeID) int { return m.nodes[n].label }

// SetLabel labels every node around n's vertex.
func (m *Mesh) SetLabel(n NodeID, label int) {
	for v := range m.VertexLoop(n) {
		m.nodes[v].label = label
	}
}

// SetListener installs the message callback used by passes that create
// nodes. A nil listener disables notification.
func (m *Mesh) SetListener(l Listener) { m.listener = l }

// Notify forwards ev to the installed listener, if any.
func (m *Mesh) Notify(ev Event, a, b NodeID) {
	if m.listener != nil {
		m.listener.OnEvent(m, ev, a, b)
	}
}

// =============================================================================
// Cycles
// =============================================================================

// FaceLoop iterates the face cycle starting at n.
func (m *Mesh) FaceLoop(n NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		p := n
		for {
			if !yield(p) {
				return
			}
			if p = m.nodes[p].fs; p == n {
				return
			}
		}
	}
}

// VertexLoop iterates the vertex cycle starting at n.
func (m *Mesh) VertexLoop(n NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		p := n
		for {
			if !yield(p) {
				return
			}
			if p = m.nodes[p].vs; p == n {
				return
			}
		}
	}
}

// FaceSize returns the number of nodes in n's face cycle.
func (m *Mesh) FaceSize(n NodeID) int {
	k := 0
	for range m.FaceLoop(n) {
		k++
	}
	return k
}

// IsTriangle reports whether n's face has exactly three nodes.
func (m *Mesh) IsTriangle(n NodeID) bool {
	return m.nodes[m.nodes[m.nodes[n].fs].fs].fs == n && m.nodes[n].fs != n
}

// Faces yields one node per face cycle.
func (m *Mesh) Faces() iter.Seq[NodeID] {
	return m.cycles(func(n NodeID) NodeID { return m.nodes[n].fs })
}

// Vertices yields one node per vertex cycle.
func (m *Mesh) Vertices() iter.Seq[NodeID] {
	return m.cycles(func(n NodeID) NodeID { return m.nodes[n].vs })
}

// Edges yields the lower-numbered node of every undirected edge.
func (m *Mesh) Edges() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for i := range m.nodes {
			n := NodeID(i)
			if n < m.nodes[n].mate && !yield(n) {
				return
			}
		}
	}
}

func (m *Mesh) cycles(next func(NodeID) NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		seen := make([]bool, len(m.nodes))
		for i := range m.nodes {
			if seen[i] {
				continue
			}
			start := NodeID(i)
			for p := start; !seen[p]; p = next(p) {
				seen[p] = true
			}
			if !yield(start) {
				return
			}
		}
	}
}

// SignedArea returns the signed UV area enclosed by n's face cycle.
// Counter-clockwise faces are positive.
func (m *Mesh) SignedArea(n NodeID) float64 {
	var sum float64
	for p := range m.FaceLoop(n) {
		a, b := m.nodes[p].uv, m.nodes[m.nodes[p].fs].uv
		sum += a.Cross(b)
	}
	return sum / 2
}

// =============================================================================
// Topology edits
// =============================================================================

// Twist exchanges the vertex successors of a and b.
//
// If a and b share a vertex the vertex is split in two, otherwise the two
// vertices are merged. Face cycles are relinked so that VSucc(FSucc(n)) ==
// Mate(n) keeps holding; a single Twist usually leaves the mesh geometrically
// inconsistent and is only meaningful in the matched pairs used by flips and
// joins.
func (m *Mesh) Twist(a, b NodeID) {
	av, bv := m.nodes[a].vs, m.nodes[b].vs
	m.nodes[m.nodes[av].mate].fs = b
	m.nodes[m.nodes[bv].mate].fs = a
	m.nodes[a].vs = bv
	m.nodes[b].vs = av
}

// NewEdge allocates an isolated edge from p to q and returns its two nodes.
// The edge forms its own component: two vertices and one face.
func (m *Mesh) NewEdge(p, q r2.Point) (NodeID, NodeID) {
	a := NodeID(len(m.nodes))
	b := a + 1
	m.nodes = append(m.nodes,
		node{fs: b, vs: a, mate: b, label: NoLabel, uv: p},
		node{fs: a, vs: b, mate: a, label: NoLabel, uv: q},
	)
	return a, b
}

// Join inserts an edge from a's vertex to b's vertex and returns the new
// node at a's vertex followed by the new node at b's vertex.
//
// When a and b lie on the same face the face is split: the first returned
// node continues into b and the second continues into a. When they lie on
// different faces the two cycles are merged. Coordinates, world coordinates,
// labels and the exterior bit are copied from a and b.
func (m *Mesh) Join(a, b NodeID) (NodeID, NodeID) {
	na, nb := m.NewEdge(m.nodes[a].uv, m.nodes[b].uv)
	m.copyVertex(na, a)
	m.copyVertex(nb, b)
	faceBits := m.nodes[a].mask & MaskExterior
	m.nodes[na].mask = faceBits
	m.nodes[nb].mask = faceBits

	m.Twist(na, a)
	m.Twist(nb, b)
	return na, nb
}

// SplitEdge inserts a vertex at p in the middle of n's edge and returns the
// two new nodes: the one following n on n's face, then the one following
// Mate(n) on the other face. Both share the new vertex.
func (m *Mesh) SplitEdge(n NodeID, p r2.Point) (NodeID, NodeID) {
	mt := m.nodes[n].mate
	next, mateNext := m.nodes[n].fs, m.nodes[mt].fs

	a := NodeID(len(m.nodes))
	b := a + 1
	m.nodes = append(m.nodes,
		node{fs: next, vs: b, mate: mt, label: NoLabel, uv: p, mask: m.nodes[n].mask & (MaskExterior | MaskBoundary)},
		node{fs: mateNext, vs: a, mate: n, label: NoLabel, uv: p, mask: m.nodes[mt].mask & (MaskExterior | MaskBoundary)},
	)
	m.nodes[n].fs = a
	m.nodes[mt].fs = b
	m.nodes[n].mate = b
	m.nodes[mt].mate = a
	return a, b
}

func (m *Mesh) copyVertex(dst, src NodeID) {
	m.nodes[dst].uv = m.nodes[src].uv
	m.nodes[dst].xyz = m.nodes[src].xyz
	m.nodes[dst].hasXYZ = m.nodes[src].hasXYZ
	m.nodes[dst].label = m.nodes[src].label
}

// CopyVertexData copies coordinates and label from src's vertex to the
// single node dst without touching dst's vertex cycle.
func (m *Mesh) CopyVertexData(dst, src NodeID) { m.copyVertex(dst, src) }

// =============================================================================
// Coordinate transforms
// =============================================================================

// Transform replaces every node's UV coordinate with f(uv).
func (m *Mesh) Transform(f func(r2.Point) r2.Point) {
	for i := range m.nodes {
		m.nodes[i].uv = f(m.nodes[i].uv)
	}
}

// Rotate90 rotates all UV coordinates a quarter turn counter-clockwise.
func (m *Mesh) Rotate90() {
	m.Transform(func(p r2.Point) r2.Point { return r2.Point{X: -p.Y, Y: p.X} })
}

// RotateMinus90 undoes [Mesh.Rotate90].
func (m *Mesh) RotateMinus90() {
	m.Transform(func(p r2.Point) r2.Point { return r2.Point{X: p.Y, Y: -p.X} })
}

// Rotate180 negates all UV coordinates.
func (m *Mesh) Rotate180() {
	m.Transform(func(p r2.Point) r2.Point { return r2.Point{X: -p.X, Y: -p.Y} })
}
