package mesh

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// FromLoops builds a planar subdivision from one outer loop and any number
// of hole loops, each given as indices into points.
//
// The outer loop is reoriented counter-clockwise and holes clockwise, so the
// meshed region is always on the left of its boundary nodes. Nodes facing
// away from the region (outside the outer loop and inside holes) are marked
// [MaskExterior] and every loop edge is marked [MaskBoundary]. Holes are not
// connected to the outer loop; the sweep regulariser does that. Vertex
// labels are the point indices.
func FromLoops(points []r2.Point, loops [][]int) (*Mesh, error) {
	if len(loops) == 0 {
		return nil, ErrEmptyInput
	}
	m := New()
	for li, loop := range loops {
		if len(loop) < 3 {
			return nil, fmt.Errorf("%w: loop %d has %d vertices", ErrDegenerateLoop, li, len(loop))
		}
		for _, idx := range loop {
			if idx < 0 || idx >= len(points) {
				return nil, fmt.Errorf("%w: loop %d references point %d", ErrPointIndex, li, idx)
			}
		}
		pts := make([]int, len(loop))
		copy(pts, loop)
		area := loopArea(points, pts)
		if area == 0 {
			return nil, fmt.Errorf("%w: loop %d has zero area", ErrDegenerateLoop, li)
		}
		if (li == 0) != (area > 0) {
			reverse(pts)
		}
		m.addLoop(points, pts)
	}
	return m, nil
}

// addLoop appends 2k nodes for a k-vertex loop: inner nodes following the
// loop order and outer nodes running the other way.
func (m *Mesh) addLoop(points []r2.Point, loop []int) {
	k := len(loop)
	base := NodeID(len(m.nodes))
	in := func(i int) NodeID { return base + NodeID((i+k)%k) }
	out := func(i int) NodeID { return base + NodeID(k+(i+k)%k) }

	for i := 0; i < k; i++ {
		m.nodes = append(m.nodes, node{
			fs:    in(i + 1),
			vs:    out(i - 1),
			mate:  out(i),
			mask:  MaskBoundary,
			label: loop[i],
			uv:    points[loop[i]],
		})
	}
	for i := 0; i < k; i++ {
		j := loop[(i+1)%k]
		m.nodes = append(m.nodes, node{
			fs:    out(i - 1),
			vs:    in(i + 1),
			mate:  in(i),
			mask:  MaskBoundary | MaskExterior,
			label: j,
			uv:    points[j],
		})
	}
}

// FromTriangles builds a mesh from counter-clockwise triangles over points.
//
// Interior edges shared by two triangles get mated nodes; every edge used by
// a single triangle is mated with an exterior node, and exterior nodes are
// chained into boundary cycles. Each boundary vertex may have only one
// boundary fan, otherwise [ErrNonManifold] is returned.
func FromTriangles(points []r2.Point, tris [][3]int) (*Mesh, error) {
	if len(tris) == 0 {
		return nil, ErrEmptyInput
	}
	type dirEdge struct{ from, to int }

	m := New()
	byEdge := make(map[dirEdge]NodeID, 3*len(tris))
	for ti, t := range tris {
		for _, idx := range t {
			if idx < 0 || idx >= len(points) {
				return nil, fmt.Errorf("%w: triangle %d references point %d", ErrPointIndex, ti, idx)
			}
		}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			return nil, fmt.Errorf("%w: triangle %d repeats a vertex", ErrDegenerateLoop, ti)
		}
		base := NodeID(len(m.nodes))
		for k := 0; k < 3; k++ {
			e := dirEdge{t[k], t[(k+1)%3]}
			if _, dup := byEdge[e]; dup {
				return nil, fmt.Errorf("%w: edge %d->%d used twice", ErrNonManifold, e.from, e.to)
			}
			byEdge[e] = base + NodeID(k)
			m.nodes = append(m.nodes, node{
				fs:    base + NodeID((k+1)%3),
				vs:    Nil,
				mate:  Nil,
				label: t[k],
				uv:    points[t[k]],
			})
		}
	}

	// Pair interior edges, then give every unpaired node an exterior mate.
	outgoing := make(map[int]NodeID)
	n := len(m.nodes)
	for i := 0; i < n; i++ {
		id := NodeID(i)
		if m.nodes[id].mate != Nil {
			continue
		}
		from := m.nodes[id].label
		to := m.nodes[m.nodes[id].fs].label
		if twin, ok := byEdge[dirEdge{to, from}]; ok {
			m.nodes[id].mate = twin
			m.nodes[twin].mate = id
			continue
		}
		ext := NodeID(len(m.nodes))
		m.nodes = append(m.nodes, node{
			fs:    Nil,
			vs:    Nil,
			mate:  id,
			mask:  MaskExterior | MaskBoundary,
			label: to,
			uv:    points[to],
		})
		m.nodes[id].mate = ext
		m.nodes[id].mask |= MaskBoundary
		if _, dup := outgoing[to]; dup {
			return nil, fmt.Errorf("%w: vertex %d has several boundary fans", ErrNonManifold, to)
		}
		outgoing[to] = ext
	}
	for i := n; i < len(m.nodes); i++ {
		ext := NodeID(i)
		// ext runs to the origin of its mate; the next exterior node leaves
		// from there.
		next, ok := outgoing[m.nodes[m.nodes[ext].mate].label]
		if !ok {
			return nil, fmt.Errorf("%w: open boundary at vertex %d", ErrNonManifold, m.nodes[m.nodes[ext].mate].label)
		}
		m.nodes[ext].fs = next
	}
	m.deriveVertexCycles()
	return m, nil
}

// deriveVertexCycles fills vertex successors from face successors and
// mates using VSucc(FSucc(n)) == Mate(n).
func (m *Mesh) deriveVertexCycles() {
	for i := range m.nodes {
		m.nodes[m.nodes[i].fs].vs = m.nodes[i].mate
	}
}

// Grid builds an nx by ny grid of unit cells spanning [0,nx]x[0,ny], each
// cell split by the diagonal from its lower-left to its upper-right corner.
func Grid(nx, ny int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrEmptyInput, nx, ny)
	}
	points := make([]r2.Point, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			points = append(points, r2.Point{X: float64(i), Y: float64(j)})
		}
	}
	at := func(i, j int) int { return j*(nx+1) + i }
	tris := make([][3]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			tris = append(tris, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return FromTriangles(points, tris)
}

func loopArea(points []r2.Point, loop []int) float64 {
	var sum float64
	for i, idx := range loop {
		sum += points[idx].Cross(points[loop[(i+1)%len(loop)]])
	}
	return sum / 2
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
