package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/flip"
)

// ErrOutsideDomain is returned by a surface mapping for parameters it does
// not cover.
var ErrOutsideDomain = errors.New("parameter outside surface domain")

// Plane maps (u, v) to (u, v, 0).
func Plane() flip.Mapper {
	return flip.MapperFunc(func(_ mesh.NodeID, uv r2.Point) (r3.Vector, error) {
		return r3.Vector{X: uv.X, Y: uv.Y}, nil
	})
}

// Cylinder maps u as arc length around a cylinder of the given radius and
// v as height. U is periodic with period 2*pi*radius.
func Cylinder(radius float64) flip.Mapper {
	return flip.MapperFunc(func(_ mesh.NodeID, uv r2.Point) (r3.Vector, error) {
		a := uv.X / radius
		return r3.Vector{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: uv.Y}, nil
	})
}

// Sphere maps u as longitude and v as latitude, both in radians, onto a
// sphere of the given radius. Latitudes beyond the poles are rejected.
func Sphere(radius float64) flip.Mapper {
	return flip.MapperFunc(func(_ mesh.NodeID, uv r2.Point) (r3.Vector, error) {
		if math.Abs(uv.Y) > math.Pi/2 {
			return r3.Vector{}, fmt.Errorf("%w: latitude %g", ErrOutsideDomain, uv.Y)
		}
		c := math.Cos(uv.Y)
		return r3.Vector{
			X: radius * c * math.Cos(uv.X),
			Y: radius * c * math.Sin(uv.X),
			Z: radius * math.Sin(uv.Y),
		}, nil
	})
}

// Mapper returns the surface mapping named by the options.
func (o *Options) Mapper() (flip.Mapper, error) {
	switch o.Surface {
	case SurfacePlane, "":
		return Plane(), nil
	case SurfaceCylinder:
		return Cylinder(o.radius()), nil
	case SurfaceSphere:
		return Sphere(o.radius()), nil
	}
	return nil, ValidateSurface(o.Surface)
}

func (o *Options) radius() float64 {
	if o.Radius <= 0 {
		return DefaultRadius
	}
	return o.Radius
}

// FlipPredicate returns the predicate named by the options, or nil for
// [PredicateNone].
func (o *Options) FlipPredicate() (flip.Predicate, error) {
	switch o.Predicate {
	case PredicateAspect, "":
		return flip.AspectRatio{PeriodU: o.PeriodU, PeriodV: o.PeriodV, ScaleU: o.ScaleU, ScaleV: o.ScaleV}, nil
	case PredicateMapped:
		m, err := o.Mapper()
		if err != nil {
			return nil, err
		}
		return flip.MappedAspectRatio{Mapper: m}, nil
	case PredicateInCircle:
		return flip.InCircle{}, nil
	case PredicateAxisU:
		return flip.AxisExtent{Axis: flip.AxisU, PeriodU: o.PeriodU, PeriodV: o.PeriodV}, nil
	case PredicateAxisV:
		return flip.AxisExtent{Axis: flip.AxisV, PeriodU: o.PeriodU, PeriodV: o.PeriodV}, nil
	case PredicateNone:
		return nil, nil
	}
	return nil, ValidatePredicate(o.Predicate)
}
