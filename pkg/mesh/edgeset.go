package mesh

// EdgeSet is a worklist of undirected edges backed by a private mask bit.
//
// Each edge is stored once, by its lower-numbered node, so adding either
// direction of an edge that is already present is a no-op. Removal order is
// unspecified. Call [EdgeSet.Close] to return the mask bit to the mesh.
type EdgeSet struct {
	m     *Mesh
	mask  Mask
	stack []NodeID
}

// NewEdgeSet claims a mask bit from m and returns an empty set.
func NewEdgeSet(m *Mesh) (*EdgeSet, error) {
	mask, err := m.GrabMask()
	if err != nil {
		return nil, err
	}
	return &EdgeSet{m: m, mask: mask}, nil
}

func (s *EdgeSet) canonical(n NodeID) NodeID {
	if mt := s.m.nodes[n].mate; mt < n {
		return mt
	}
	return n
}

// Add inserts n's edge if it is not already present.
func (s *EdgeSet) Add(n NodeID) { s.TestAndAdd(n) }

// TestAndAdd inserts n's edge and reports whether it was already present.
func (s *EdgeSet) TestAndAdd(n NodeID) bool {
	c := s.canonical(n)
	if s.m.nodes[c].mask&s.mask != 0 {
		return true
	}
	s.m.nodes[c].mask |= s.mask
	s.stack = append(s.stack, c)
	return false
}

// Contains reports whether n's edge is in the set.
func (s *EdgeSet) Contains(n NodeID) bool {
	return s.m.nodes[s.canonical(n)].mask&s.mask != 0
}

// ChooseAny removes and returns some edge of the set. The second result is
// false when the set is empty.
func (s *EdgeSet) ChooseAny() (NodeID, bool) {
	if len(s.stack) == 0 {
		return Nil, false
	}
	n := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.m.nodes[n].mask &^= s.mask
	return n, true
}

// Len returns the number of edges in the set.
func (s *EdgeSet) Len() int { return len(s.stack) }

// Close empties the set and releases its mask bit.
func (s *EdgeSet) Close() {
	for _, n := range s.stack {
		s.m.nodes[n].mask &^= s.mask
	}
	s.stack = nil
	s.m.DropMask(s.mask)
}
