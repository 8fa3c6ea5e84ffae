// Package quality measures triangle shape in parametric and world space.
//
// The central measure is the quadratic aspect ratio: signed area divided by
// the sum of squared edge lengths, normalised so an equilateral triangle
// scores 1. It is scale invariant, positive for counter-clockwise triangles
// and zero or negative for degenerate or inverted ones.
package quality

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// aspectScale normalises area/sumSq so equilateral triangles score 1.
var aspectScale = 4 * math.Sqrt(3)

// Orient returns twice the signed area of triangle abc.
func Orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// AspectRatio returns the signed quadratic aspect ratio of triangle abc.
func AspectRatio(a, b, c r2.Point) float64 {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	sumSq := ab.Dot(ab) + bc.Dot(bc) + ca.Dot(ca)
	if sumSq == 0 {
		return 0
	}
	return aspectScale * 0.5 * ab.Cross(c.Sub(a)) / sumSq
}

// AspectRatio3 returns the unsigned quadratic aspect ratio of a triangle in
// space.
func AspectRatio3(a, b, c r3.Vector) float64 {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	sumSq := ab.Norm2() + bc.Norm2() + ca.Norm2()
	if sumSq == 0 {
		return 0
	}
	return aspectScale * 0.5 * ab.Cross(c.Sub(a)).Norm() / sumSq
}

// Normal returns the unnormalised normal of triangle abc.
func Normal(a, b, c r3.Vector) r3.Vector {
	return b.Sub(a).Cross(c.Sub(a))
}

// InCircle returns a value that is positive when d lies strictly inside the
// circle through the counter-clockwise triangle abc, negative outside and
// zero on the circle, together with the magnitude bound used to judge
// whether the sign is meaningful.
func InCircle(a, b, c, d r2.Point) (det, bound float64) {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy

	bc := bdx*cdy - cdx*bdy
	ca := cdx*ady - adx*cdy
	ab := adx*bdy - bdx*ady

	det = alift*bc + blift*ca + clift*ab
	bound = alift*(math.Abs(bdx*cdy)+math.Abs(cdx*bdy)) +
		blift*(math.Abs(cdx*ady)+math.Abs(adx*cdy)) +
		clift*(math.Abs(adx*bdy)+math.Abs(bdx*ady))
	return det, bound
}

// Wrap reduces d into [-period/2, period/2]. A non-positive period leaves d
// unchanged.
func Wrap(d, period float64) float64 {
	if period <= 0 {
		return d
	}
	return d - period*math.Round(d/period)
}

// Periodic returns b - a with each component wrapped into its period.
func Periodic(a, b r2.Point, periodU, periodV float64) r2.Point {
	return r2.Point{X: Wrap(b.X-a.X, periodU), Y: Wrap(b.Y-a.Y, periodV)}
}
