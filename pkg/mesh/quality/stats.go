package quality

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Summary describes the distribution of triangle aspect ratios over the
// interior triangles of a mesh.
type Summary struct {
	Triangles int     `json:"triangles"`
	Inverted  int     `json:"inverted"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	P10       float64 `json:"p10"`
	Median    float64 `json:"median"`
}

// Ratios returns the aspect ratio of every interior triangular face, in
// face iteration order. Non-triangular and exterior faces are skipped.
func Ratios(m *mesh.Mesh) []float64 {
	var out []float64
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) || !m.IsTriangle(f) {
			continue
		}
		b := m.FSucc(f)
		out = append(out, AspectRatio(m.UV(f), m.UV(b), m.UV(m.FSucc(b))))
	}
	return out
}

// Summarize computes a [Summary] of the interior triangles of m. A mesh
// without interior triangles yields the zero Summary.
func Summarize(m *mesh.Mesh) Summary {
	return SummarizeRatios(Ratios(m))
}

// SummarizeRatios computes a [Summary] of precomputed aspect ratios.
func SummarizeRatios(ratios []float64) Summary {
	if len(ratios) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(ratios)
	slices.Sort(sorted)

	s := Summary{
		Triangles: len(sorted),
		Min:       floats.Min(sorted),
		Max:       floats.Max(sorted),
		Mean:      stat.Mean(sorted, nil),
		P10:       stat.Quantile(0.1, stat.Empirical, sorted, nil),
		Median:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	for _, r := range sorted {
		if r <= 0 {
			s.Inverted++
		}
	}
	return s
}
