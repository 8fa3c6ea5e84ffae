package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/meshio"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Scale converts UV units to points. Zero means 72 (one unit per inch).
	Scale float64

	// Labels shows each vertex's input index next to it.
	Labels bool
}

// ToDOT converts a mesh to an undirected Graphviz graph. Vertices are pinned
// at their scaled UV coordinates; boundary edges are bold and edges with
// both sides exterior are dashed.
func ToDOT(m *mesh.Mesh, opts DOTOptions) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 72
	}
	idx := meshio.VertexIndex(m)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Labels {
		buf.WriteString("  node [shape=circle, width=0.15, fixedsize=true, fontsize=8, style=filled, fillcolor=white];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.05];\n")
	}
	buf.WriteString("  edge [color=\"#4a5568\"];\n")
	buf.WriteString("\n")

	for v := range m.Vertices() {
		p := m.UV(v)
		label := ""
		if opts.Labels && m.Label(v) != mesh.NoLabel {
			label = strconv.Itoa(m.Label(v))
		}
		fmt.Fprintf(&buf, "  v%d [pos=\"%.4f,%.4f!\", label=%q];\n", idx[v], p.X*scale, p.Y*scale, label)
	}

	buf.WriteString("\n")
	for n := range m.Edges() {
		mt := m.Mate(n)
		var attrs string
		switch {
		case m.Has(n, mesh.MaskExterior) && m.Has(mt, mesh.MaskExterior):
			attrs = " [style=dashed, color=\"#a0aec0\"]"
		case m.Has(n, mesh.MaskBoundary):
			attrs = " [penwidth=2, color=\"#1a202c\"]"
		}
		fmt.Fprintf(&buf, "  v%d -- v%d%s;\n", idx[n], idx[mt], attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato layout.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt width and height with a
// viewBox-only root element so the drawing scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
