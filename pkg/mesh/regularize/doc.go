// Package regularize splits the faces of a planar mesh into monotone pieces.
//
// # Overview
//
// A face is regular when walking its boundary meets exactly one local
// minimum and one local maximum in sweep order (V first, then U). Regular
// faces can be triangulated by a simple fan from their lowest vertex, which
// is what package triangulate does next.
//
// [Regularize] sweeps the mesh from bottom to top. Every face minimum whose
// corner is reflex (a "downward" minimum, the face continues below it) is
// connected to the highest vertex already swept in the open region
// surrounding it. A second sweep over the mesh rotated by 180° handles the
// reflex maxima the same way. Holes are attached to their surrounding face by
// the first diagonal that reaches them.
//
// # Channels
//
// The open regions of a sweep are tracked as channels: a falling left edge,
// a rising right edge and the top node reached so far. Channels are advanced
// lazily when the next minimum is processed, are closed when both sides meet
// at a peak and are merged with their left neighbour when only one side
// does.
//
// A downward minimum that no channel brackets is left alone and counted in
// [Result.Unconnected]; the reverse sweep usually resolves it. Faces marked
// [mesh.MaskExterior] are never swept.
package regularize
