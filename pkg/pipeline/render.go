package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/meshtopo/pkg/render"
)

// Render generates one output artifact for a processed mesh.
func Render(ctx context.Context, res *Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(res, "", "  ")
	case FormatDOT:
		return []byte(render.ToDOT(res.Mesh, render.DOTOptions{Labels: opts.Labels})), nil
	case FormatSVG:
		return render.RenderSVG(ctx, render.ToDOT(res.Mesh, render.DOTOptions{Labels: opts.Labels}))
	case FormatPNG:
		return render.RenderPNG(res.Mesh, render.PNGOptions{Width: opts.Width})
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
