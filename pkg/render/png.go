package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
)

// ErrEmptyMesh is returned by [RenderPNG] for a mesh without nodes.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// PNGOptions configures [RenderPNG].
type PNGOptions struct {
	// Width is the image width in pixels. Zero means 800. The height
	// follows from the mesh's aspect.
	Width int

	// Padding is the margin in pixels. Zero means 16.
	Padding int

	// Plain disables quality shading; faces are filled uniformly.
	Plain bool
}

// RenderPNG rasterises a mesh. Bounded faces are shaded from red (sliver)
// to green (equilateral) by aspect ratio; inverted triangles are magenta.
func RenderPNG(m *mesh.Mesh, opts PNGOptions) ([]byte, error) {
	if m.Len() == 0 {
		return nil, ErrEmptyMesh
	}
	width := opts.Width
	if width <= 0 {
		width = 800
	}
	pad := opts.Padding
	if pad <= 0 {
		pad = 16
	}

	lo, hi := bounds(m)
	span := hi.Sub(lo)
	w := span.X
	if w == 0 {
		w = math.Max(span.Y, 1)
	}
	scale := float64(width-2*pad) / w
	height := int(math.Ceil(span.Y*scale)) + 2*pad

	c := gg.NewContext(width, height)
	c.SetRGB(1, 1, 1)
	c.Clear()

	// Flip so that V points up.
	c.Translate(float64(pad), float64(height-pad))
	c.Scale(scale, -scale)
	c.Translate(-lo.X, -lo.Y)

	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		tracePath(c, m, f)
		r, g, b := faceColor(m, f, opts.Plain)
		c.SetRGB(r, g, b)
		c.Fill()
	}

	c.SetLineWidth(1 / scale)
	c.SetRGB(0.29, 0.33, 0.41)
	for n := range m.Edges() {
		if m.Has(n, mesh.MaskBoundary) {
			continue
		}
		p, q := m.UV(n), m.UV(m.Mate(n))
		c.DrawLine(p.X, p.Y, q.X, q.Y)
	}
	c.Stroke()

	c.SetLineWidth(2.5 / scale)
	c.SetRGB(0.1, 0.13, 0.17)
	for n := range m.Edges() {
		if !m.Has(n, mesh.MaskBoundary) {
			continue
		}
		p, q := m.UV(n), m.UV(m.Mate(n))
		c.DrawLine(p.X, p.Y, q.X, q.Y)
	}
	c.Stroke()

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func bounds(m *mesh.Mesh) (lo, hi r2.Point) {
	lo = r2.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for v := range m.Vertices() {
		p := m.UV(v)
		lo = r2.Point{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = r2.Point{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	return lo, hi
}

func tracePath(c *gg.Context, m *mesh.Mesh, f mesh.NodeID) {
	c.NewSubPath()
	first := true
	for n := range m.FaceLoop(f) {
		p := m.UV(n)
		if first {
			c.MoveTo(p.X, p.Y)
			first = false
			continue
		}
		c.LineTo(p.X, p.Y)
	}
	c.ClosePath()
}

func faceColor(m *mesh.Mesh, f mesh.NodeID, plain bool) (r, g, b float64) {
	if plain || !m.IsTriangle(f) {
		return 0.89, 0.92, 0.96
	}
	b1 := m.FSucc(f)
	q := quality.AspectRatio(m.UV(f), m.UV(b1), m.UV(m.FSucc(b1)))
	if q <= 0 {
		return 0.85, 0.2, 0.75
	}
	q = math.Min(q, 1)
	return 0.95 - 0.55*q, 0.45 + 0.45*q, 0.45
}
