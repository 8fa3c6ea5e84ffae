// Package mesh provides the edge-use graph that every meshtopo pass works on.
//
// # Overview
//
// A [Mesh] is a planar subdivision stored as an arena of edge-use nodes. Each
// node is one directed traversal of one edge, bound to the vertex it leaves
// and to the face on its left. Every node participates in two cycles:
//
//   - the face cycle ([Mesh.FSucc], [Mesh.FPred]), counter-clockwise around
//     the face
//   - the vertex cycle ([Mesh.VSucc], [Mesh.VPred]), counter-clockwise around
//     the vertex
//
// and is paired with its [Mesh.Mate] on the other side of the edge. Vertices,
// edges and faces have no records of their own; they are the vertex cycles,
// mate pairs and face cycles of the arena. Nodes are addressed by [NodeID] and
// are never freed, so IDs held by a caller survive every edit in this module.
//
// # Editing
//
// [Mesh.Twist] is the single structural primitive: it exchanges the vertex
// successors of two nodes, splitting or merging vertex cycles while keeping
// face cycles consistent. Flips and joins are matched pairs of twists.
// [Mesh.Join] inserts a diagonal and [Mesh.SplitEdge] inserts a vertex into
// an edge.
//
// # Masks
//
// Each node carries a [Mask] of flag bits. [MaskExterior] and [MaskBoundary]
// are reserved; all other bits are claimed per pass through [Mesh.GrabMask]
// or, preferably, the scoped [Mesh.WithMask]:
//
//	err := m.WithMask(func(visited mesh.Mask) error {
//	    for n := range m.FaceLoop(start) {
//	        m.Set(n, visited)
//	    }
//	    return nil
//	})
//
// [EdgeSet] is a worklist built on a private mask bit.
//
// # Building
//
// [FromLoops] builds a polygon with holes, [FromTriangles] an existing
// triangulation and [Grid] a triangulated grid. [Mesh.Validate] checks the
// structural invariants and [Mesh.Counts] reports V, E, F and the number of
// components, for which V - E + F == 2 * components.
//
// # Concurrency
//
// Mesh instances are not safe for concurrent use. Passes mutate the mesh in
// place and leave it consistent only when they return.
package mesh
