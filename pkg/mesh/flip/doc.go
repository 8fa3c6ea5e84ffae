// Package flip improves triangle shape by swapping the diagonals of quads.
//
// [Flip] is the local operator: given an edge between two interior
// triangles it asks a [Predicate] whether the other diagonal of their quad
// is better and, if so, relinks the edge with two pairs of [mesh.Mesh.Twist]
// calls. V, E and F never change; node IDs are preserved.
//
// # Predicates
//
//   - [AspectRatio]: worst quadratic aspect ratio of the two triangles, with
//     optional periods (cylinder and torus parameterisations) and axis scales
//   - [MappedAspectRatio]: the same measure on world coordinates obtained
//     through a caller [Mapper], guarding normal orientation
//   - [InCircle]: the local Delaunay criterion
//   - [AxisExtent]: prefers diagonals that span little of one parametric
//     axis
//
// [PredicateFunc] adapts an ordinary function.
//
// # Driver
//
// [Improve] runs a predicate over a worklist of edges until no queued edge
// flips, re-queueing the outer edges of every flipped quad. The total number
// of flips is capped at E·max(20, E/60) ([FlipLimit]) so the call terminates
// even when the predicate does not converge:
//
//	res, err := flip.Improve(m, flip.InCircle{}, flip.Options{})
//	if err != nil {
//	    return err
//	}
//	logger.Info("delaunay", "flips", res.Flips)
package flip
