package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFreeMask is returned by [Mesh.GrabMask] when every non-reserved
	// mask bit is held by some pass.
	ErrNoFreeMask = errors.New("no free mask bit")

	// ErrEmptyInput is returned by the builders when there is nothing to build.
	ErrEmptyInput = errors.New("empty input")

	// ErrDegenerateLoop is returned by the builders for loops or triangles
	// with fewer than three distinct vertices or zero area.
	ErrDegenerateLoop = errors.New("degenerate loop")

	// ErrPointIndex is returned by the builders when a loop or triangle
	// references a point that does not exist.
	ErrPointIndex = errors.New("point index out of range")

	// ErrNonManifold is returned by [FromTriangles] when a directed edge is
	// used twice or the boundary does not form simple cycles.
	ErrNonManifold = errors.New("non-manifold input")

	// ErrMateAsymmetric is returned by [Mesh.Validate] when Mate(Mate(n)) != n
	// or a node is its own mate.
	ErrMateAsymmetric = errors.New("mate links are not symmetric")

	// ErrBrokenCycle is returned by [Mesh.Validate] when face or vertex
	// successors do not form permutations, or VSucc(FSucc(n)) != Mate(n).
	ErrBrokenCycle = errors.New("broken face or vertex cycle")

	// ErrCoordinateMismatch is returned by [Mesh.Validate] when nodes around
	// one vertex disagree on its UV coordinate.
	ErrCoordinateMismatch = errors.New("vertex coordinates disagree")
)

// Validate checks the structural invariants of the mesh:
//
//   - every node has a distinct mate and Mate(Mate(n)) == n
//   - face and vertex successors are permutations of the arena
//   - VSucc(FSucc(n)) == Mate(n) for every node
//   - all nodes of one vertex cycle share a UV coordinate
//
// It runs in O(N) and returns the first violation found.
func (m *Mesh) Validate() error {
	n := len(m.nodes)
	if n%2 != 0 {
		return fmt.Errorf("%w: odd node count %d", ErrMateAsymmetric, n)
	}
	fsIn := make([]bool, n)
	vsIn := make([]bool, n)
	for i := range m.nodes {
		id := NodeID(i)
		nd := m.nodes[i]
		if !m.Valid(nd.mate) || !m.Valid(nd.fs) || !m.Valid(nd.vs) {
			return fmt.Errorf("%w: node %d has a dangling link", ErrBrokenCycle, id)
		}
		if nd.mate == id || m.nodes[nd.mate].mate != id {
			return fmt.Errorf("%w: node %d", ErrMateAsymmetric, id)
		}
		if fsIn[nd.fs] || vsIn[nd.vs] {
			return fmt.Errorf("%w: node %d shares a successor", ErrBrokenCycle, id)
		}
		fsIn[nd.fs] = true
		vsIn[nd.vs] = true
		if m.nodes[nd.fs].vs != nd.mate {
			return fmt.Errorf("%w: VSucc(FSucc(%d)) != Mate(%d)", ErrBrokenCycle, id, id)
		}
		if m.nodes[nd.vs].uv != nd.uv {
			return fmt.Errorf("%w: node %d at %v, vertex successor at %v",
				ErrCoordinateMismatch, id, nd.uv, m.nodes[nd.vs].uv)
		}
	}
	return nil
}

// Counts summarises the combinatorial size of a mesh.
type Counts struct {
	Vertices   int `json:"vertices"`
	Edges      int `json:"edges"`
	Faces      int `json:"faces"`
	Components int `json:"components"`
}

// Euler returns V - E + F.
func (c Counts) Euler() int { return c.Vertices - c.Edges + c.Faces }

// Counts returns the number of vertex cycles, edges, face cycles and
// connected components. For a valid mesh Euler() == 2*Components.
func (m *Mesh) Counts() Counts {
	var c Counts
	for range m.Vertices() {
		c.Vertices++
	}
	for range m.Faces() {
		c.Faces++
	}
	c.Edges = m.EdgeCount()

	// Components: union-find over nodes joined by face and vertex links.
	parent := make([]NodeID, len(m.nodes))
	for i := range parent {
		parent[i] = NodeID(i)
	}
	find := func(x NodeID) NodeID {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b NodeID) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[ra] = rb
		}
	}
	for i := range m.nodes {
		union(NodeID(i), m.nodes[i].fs)
		union(NodeID(i), m.nodes[i].vs)
	}
	for i := range parent {
		if find(NodeID(i)) == NodeID(i) {
			c.Components++
		}
	}
	return c
}

// MarkExterior sets [MaskExterior] on every face with non-positive signed
// area and clears it elsewhere. This is only correct for meshes without
// holes; meshes built by [FromLoops] or [FromTriangles] carry exact marks.
func (m *Mesh) MarkExterior() {
	for f := range m.Faces() {
		if m.SignedArea(f) <= 0 {
			m.SetFace(f, MaskExterior)
			continue
		}
		for p := range m.FaceLoop(f) {
			m.Clear(p, MaskExterior)
		}
	}
}
