package meshio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/cache"
	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Document is the input description of a planar region.
type Document struct {
	// Name is an optional label carried into stored records and renders.
	Name string `json:"name,omitempty"`

	// Vertices are the UV coordinates referenced by Loops and Triangles.
	Vertices [][2]float64 `json:"vertices"`

	// Loops lists an outer boundary followed by holes. Orientation is
	// normalised when the mesh is built.
	Loops [][]int `json:"loops,omitempty"`

	// Triangles is an alternative to Loops: a triangulation given as
	// counter-clockwise vertex triples.
	Triangles [][3]int `json:"triangles,omitempty"`
}

// Points returns the vertices as r2 points.
func (d *Document) Points() []r2.Point {
	pts := make([]r2.Point, len(d.Vertices))
	for i, v := range d.Vertices {
		pts[i] = r2.Point{X: v[0], Y: v[1]}
	}
	return pts
}

// Validate checks the document without building a mesh.
func (d *Document) Validate() error {
	if err := errors.ValidateName(d.Name); err != nil {
		return err
	}
	if err := errors.ValidatePoints(d.Points()); err != nil {
		return err
	}
	switch {
	case len(d.Loops) > 0 && len(d.Triangles) > 0:
		return errors.New(errors.ErrCodeInvalidMesh, "document has both loops and triangles")
	case len(d.Triangles) > 0:
		for i, t := range d.Triangles {
			for _, idx := range t {
				if idx < 0 || idx >= len(d.Vertices) {
					return errors.New(errors.ErrCodeInvalidMesh, "triangle %d references point %d of %d", i, idx, len(d.Vertices))
				}
			}
		}
		return nil
	default:
		return errors.ValidateLoops(len(d.Vertices), d.Loops)
	}
}

// Mesh validates the document and builds its mesh.
func (d *Document) Mesh() (*mesh.Mesh, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var (
		m   *mesh.Mesh
		err error
	)
	if len(d.Triangles) > 0 {
		m, err = mesh.FromTriangles(d.Points(), d.Triangles)
	} else {
		m, err = mesh.FromLoops(d.Points(), d.Loops)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMesh, err, "build mesh")
	}
	return m, nil
}

// Hash returns a content hash of the document's canonical JSON encoding.
func (d *Document) Hash() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// ReadJSON decodes a document. Unknown fields are rejected.
func ReadJSON(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode mesh document")
	}
	return &d, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
