package flip

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
)

// Predicate decides whether flipping a quad's diagonal improves the mesh.
// Implementations must be stable: if ShouldFlip accepts a quad it must
// reject the flipped quad, otherwise the driver only stops at its cap.
type Predicate interface {
	ShouldFlip(q Quad) bool
}

// PredicateFunc adapts a function to the [Predicate] interface.
type PredicateFunc func(q Quad) bool

// ShouldFlip calls f(q).
func (f PredicateFunc) ShouldFlip(q Quad) bool { return f(q) }

const (
	// nearZeroRatio is the aspect ratio below which a flip must improve the
	// worst triangle by nearZeroGain to be accepted.
	nearZeroRatio = 0.05
	nearZeroGain  = 1.25

	// ratioEpsilon absorbs rounding when the two diagonals are equivalent.
	ratioEpsilon = 1e-12

	incircleEpsilon = 1e-12
)

// improves compares the worst current triangle with the worst flipped one.
func improves(before, after float64) bool {
	switch {
	case before <= 0:
		return after > before+ratioEpsilon
	case before < nearZeroRatio:
		return after > nearZeroGain*before
	default:
		return after > before+ratioEpsilon
	}
}

// =============================================================================
// Periodic quadratic aspect ratio
// =============================================================================

// AspectRatio flips when the worse of the two flipped triangles has a
// better quadratic aspect ratio than the worse of the two current ones.
//
// Coordinate differences are wrapped into PeriodU and PeriodV when those
// are positive, so meshes parameterised on a cylinder or torus are measured
// across the seam, and are multiplied by ScaleU and ScaleV (zero means 1)
// before measuring.
type AspectRatio struct {
	PeriodU, PeriodV float64
	ScaleU, ScaleV   float64
}

// ShouldFlip implements [Predicate].
func (p AspectRatio) ShouldFlip(q Quad) bool {
	P, Q, R, S := p.local(q)
	before := min(quality.AspectRatio(P, Q, R), quality.AspectRatio(Q, P, S))
	after := min(quality.AspectRatio(P, S, R), quality.AspectRatio(S, Q, R))
	return improves(before, after)
}

// local returns the quad's corners relative to P, wrapped and scaled.
func (p AspectRatio) local(q Quad) (P, Q, R, S r2.Point) {
	pp, qq, rr, ss := q.Points()
	su, sv := scaleOr1(p.ScaleU), scaleOr1(p.ScaleV)
	d := func(x r2.Point) r2.Point {
		v := quality.Periodic(pp, x, p.PeriodU, p.PeriodV)
		return r2.Point{X: v.X * su, Y: v.Y * sv}
	}
	return r2.Point{}, d(qq), d(rr), d(ss)
}

func scaleOr1(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// =============================================================================
// Mapped 3D aspect ratio
// =============================================================================

// Mapper maps a node's parametric coordinate to a world coordinate. An error
// means the point cannot be evaluated.
type Mapper interface {
	Map(n mesh.NodeID, uv r2.Point) (r3.Vector, error)
}

// MapperFunc adapts a function to the [Mapper] interface.
type MapperFunc func(n mesh.NodeID, uv r2.Point) (r3.Vector, error)

// Map calls f(n, uv).
func (f MapperFunc) Map(n mesh.NodeID, uv r2.Point) (r3.Vector, error) { return f(n, uv) }

// MappedAspectRatio compares aspect ratios of the world-space triangles
// obtained through Mapper.
//
// A flip is rejected when either flipped triangle would face away from the
// quad's current mean normal, and accepted outright when the two current
// triangles face opposite ways and the flipped ones agree. If the mapper
// fails for any corner the flip is declined.
type MappedAspectRatio struct {
	Mapper Mapper
}

// ShouldFlip implements [Predicate].
func (p MappedAspectRatio) ShouldFlip(q Quad) bool {
	m := q.Mesh
	var pts [4]r3.Vector
	for i, n := range [4]mesh.NodeID{q.A, q.B, q.C, q.F} {
		x, err := p.Mapper.Map(n, m.UV(n))
		if err != nil {
			return false
		}
		pts[i] = x
	}
	P, Q, R, S := pts[0], pts[1], pts[2], pts[3]

	n1, n2 := quality.Normal(P, Q, R), quality.Normal(Q, P, S)
	f1, f2 := quality.Normal(P, S, R), quality.Normal(S, Q, R)

	if n1.Dot(n2) < 0 {
		return f1.Dot(f2) > 0
	}
	ref := n1.Add(n2)
	if f1.Dot(ref) <= 0 || f2.Dot(ref) <= 0 {
		return false
	}
	before := min(quality.AspectRatio3(P, Q, R), quality.AspectRatio3(Q, P, S))
	after := min(quality.AspectRatio3(P, S, R), quality.AspectRatio3(S, Q, R))
	return improves(before, after)
}

// =============================================================================
// Incircle
// =============================================================================

// InCircle is the local Delaunay criterion: flip when S lies strictly inside
// the circle through P, Q and R and both flipped triangles are
// counter-clockwise.
type InCircle struct{}

// ShouldFlip implements [Predicate].
func (InCircle) ShouldFlip(q Quad) bool {
	P, Q, R, S := q.Points()
	if quality.Orient(P, S, R) <= 0 || quality.Orient(S, Q, R) <= 0 {
		return false
	}
	det, bound := quality.InCircle(P, Q, R, S)
	return det > incircleEpsilon*bound
}

// =============================================================================
// Directional extent
// =============================================================================

// Axis selects a parametric direction.
type Axis int

const (
	// AxisU measures extents along U.
	AxisU Axis = iota
	// AxisV measures extents along V.
	AxisV
)

// String returns "u" or "v".
func (a Axis) String() string {
	if a == AxisV {
		return "v"
	}
	return "u"
}

// AxisExtent flips when the new diagonal spans less of Axis than the
// current one, which stretches triangles along the other direction. Both
// flipped triangles must keep non-negative orientation. Periods wrap
// differences as in [AspectRatio].
type AxisExtent struct {
	Axis             Axis
	PeriodU, PeriodV float64
}

// ShouldFlip implements [Predicate].
func (p AxisExtent) ShouldFlip(q Quad) bool {
	P, Q, R, S := AspectRatio{PeriodU: p.PeriodU, PeriodV: p.PeriodV}.local(q)
	if quality.Orient(P, S, R) < 0 || quality.Orient(S, Q, R) < 0 {
		return false
	}
	current := p.extent(Q.Sub(P))
	next := p.extent(R.Sub(S))
	return next < current-ratioEpsilon*math.Max(current, 1)
}

func (p AxisExtent) extent(d r2.Point) float64 {
	if p.Axis == AxisV {
		return math.Abs(d.Y)
	}
	return math.Abs(d.X)
}

var (
	_ Predicate = AspectRatio{}
	_ Predicate = MappedAspectRatio{}
	_ Predicate = InCircle{}
	_ Predicate = AxisExtent{}
	_ Predicate = PredicateFunc(nil)
)
