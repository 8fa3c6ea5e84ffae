package meshio

import (
	"io"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"

	"github.com/matzehuels/meshtopo/pkg/errors"
)

// ReadSVG builds a document from the polygon and rect elements of an SVG
// file, in document order. The first shape is the outer boundary and the
// rest are holes. SVG's y axis points down, so y coordinates are negated.
// Transforms and paths are not supported.
func ReadSVG(r io.Reader) (*Document, error) {
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse svg")
	}

	d := &Document{Name: root.Attributes["id"]}
	var walk func(el *svgparser.Element) error
	walk = func(el *svgparser.Element) error {
		var (
			pts [][2]float64
			err error
		)
		switch el.Name {
		case "polygon":
			pts, err = parsePoints(el.Attributes["points"])
		case "rect":
			pts, err = rectPoints(el.Attributes)
		}
		if err != nil {
			return err
		}
		if len(pts) > 0 {
			d.addLoop(pts)
		}
		for _, child := range el.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	if len(d.Loops) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "svg contains no polygon or rect elements")
	}
	return d, nil
}

func (d *Document) addLoop(pts [][2]float64) {
	base := len(d.Vertices)
	loop := make([]int, len(pts))
	for i, p := range pts {
		d.Vertices = append(d.Vertices, [2]float64{p[0], -p[1]})
		loop[i] = base + i
	}
	d.Loops = append(d.Loops, loop)
}

// parsePoints parses an SVG points list. Coordinates may be separated by
// commas, whitespace or both. A repeated closing point is dropped.
func parsePoints(s string) ([][2]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "polygon has an odd number of coordinates")
	}
	pts := make([][2]float64, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid x value %q", fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid y value %q", fields[i+1])
		}
		pts = append(pts, [2]float64{x, y})
	}
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts, nil
}

func rectPoints(attrs map[string]string) ([][2]float64, error) {
	var v [4]float64
	for i, name := range [4]string{"x", "y", "width", "height"} {
		s, ok := attrs[name]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid rect %s %q", name, s)
		}
		v[i] = f
	}
	x, y, w, h := v[0], v[1], v[2], v[3]
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rect has non-positive size %gx%g", w, h)
	}
	return [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, nil
}
