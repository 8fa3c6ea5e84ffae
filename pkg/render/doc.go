// Package render draws meshes.
//
// # Overview
//
// Two renderers are provided:
//
//   - [ToDOT] and [RenderSVG]: a Graphviz graph with every vertex pinned at
//     its UV coordinate, so neato keeps the mesh geometry and only draws it
//   - [RenderPNG]: a raster image drawn directly, with bounded faces shaded
//     by triangle quality
//
// Both draw boundary edges heavier than interior edges.
//
//	dot := render.ToDOT(m, render.DOTOptions{})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.RenderPNG(m, render.PNGOptions{Width: 800})
package render
