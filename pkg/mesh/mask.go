package mesh

import "math/bits"

// Mask is a set of per-node flag bits.
//
// Two bits are reserved and meaningful across passes: [MaskExterior] marks
// nodes whose face lies outside the meshed region and [MaskBoundary] marks
// edges that must not be flipped. All other bits are handed out by
// [Mesh.GrabMask] to a single pass at a time.
type Mask uint32

const (
	// MaskExterior marks nodes on faces outside the meshed region.
	MaskExterior Mask = 1 << iota
	// MaskBoundary marks both nodes of edges that are fixed in place.
	MaskBoundary

	reservedMasks = MaskExterior | MaskBoundary
)

// Has reports whether n carries every bit of mask.
func (m *Mesh) Has(n NodeID, mask Mask) bool { return m.nodes[n].mask&mask == mask }

// Any reports whether n carries at least one bit of mask.
func (m *Mesh) Any(n NodeID, mask Mask) bool { return m.nodes[n].mask&mask != 0 }

// Set sets mask on n.
func (m *Mesh) Set(n NodeID, mask Mask) { m.nodes[n].mask |= mask }

// Clear clears mask on n.
func (m *Mesh) Clear(n NodeID, mask Mask) { m.nodes[n].mask &^= mask }

// SetFace sets mask on every node of n's face.
func (m *Mesh) SetFace(n NodeID, mask Mask) {
	for p := range m.FaceLoop(n) {
		m.nodes[p].mask |= mask
	}
}

// SetEdge sets mask on n and its mate.
func (m *Mesh) SetEdge(n NodeID, mask Mask) {
	m.nodes[n].mask |= mask
	m.nodes[m.nodes[n].mate].mask |= mask
}

// ClearAll clears mask on every node.
func (m *Mesh) ClearAll(mask Mask) {
	for i := range m.nodes {
		m.nodes[i].mask &^= mask
	}
}

// CountMask returns the number of nodes carrying mask.
func (m *Mesh) CountMask(mask Mask) int {
	k := 0
	for i := range m.nodes {
		if m.nodes[i].mask&mask == mask {
			k++
		}
	}
	return k
}

// GrabMask claims one free bit for the caller's exclusive use. The bit is
// cleared on every node before it is returned. Callers must hand it back
// with [Mesh.DropMask]; prefer [Mesh.WithMask] which does so automatically.
func (m *Mesh) GrabMask() (Mask, error) {
	if m.free == 0 {
		return 0, ErrNoFreeMask
	}
	mask := Mask(1) << bits.TrailingZeros32(uint32(m.free))
	m.free &^= mask
	m.ClearAll(mask)
	return mask, nil
}

// DropMask returns a bit obtained from [Mesh.GrabMask]. Dropping a reserved
// bit or a bit that is already free is a no-op.
func (m *Mesh) DropMask(mask Mask) {
	m.free |= mask &^ reservedMasks
}

// FreeMasks returns the number of bits still available to [Mesh.GrabMask].
func (m *Mesh) FreeMasks() int { return bits.OnesCount32(uint32(m.free)) }

// WithMask grabs a bit, runs fn with it and drops the bit again, even when
// fn panics.
func (m *Mesh) WithMask(fn func(Mask) error) error {
	mask, err := m.GrabMask()
	if err != nil {
		return err
	}
	defer m.DropMask(mask)
	return fn(mask)
}
