package triangulate

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Options configures [Fan] and [Subdivide].
type Options struct {
	// Logger receives debug summaries. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// FanResult reports what a call to [Fan] did.
type FanResult struct {
	// Faces is the number of faces fanned.
	Faces int `json:"faces"`
	// Diagonals is the number of edges inserted.
	Diagonals int `json:"diagonals"`
}

// Fan triangulates every bounded face by joining its lowest vertex to each
// vertex it is not already adjacent to. A face with n corners yields n-2
// triangles. Exterior faces and faces with fewer than three corners are
// skipped.
//
// Fan assumes the faces have been regularized; on other faces the
// triangles may overlap or be inverted and should be repaired by flipping.
// New edges are announced as [mesh.EventJoinOld].
func Fan(m *mesh.Mesh, opts Options) FanResult {
	var res FanResult
	faces := slices.Collect(m.Faces())
	for _, f := range faces {
		if m.Has(f, mesh.MaskExterior) || m.FaceSize(f) <= 3 {
			continue
		}
		res.Faces++
		res.Diagonals += fanFace(m, lowest(m, f))
	}
	opts.logger().Debug("fan", "faces", res.Faces, "diagonals", res.Diagonals)
	return res
}

// fanFace cuts triangles off the face at low until one is left and returns
// the number of joins.
func fanFace(m *mesh.Mesh, low mesh.NodeID) int {
	joins := 0
	for m.FaceSize(low) > 3 {
		far := m.FSucc(m.FSucc(low))
		na, nb := m.Join(low, far)
		m.Notify(mesh.EventJoinOld, na, nb)
		low = na
		joins++
	}
	return joins
}

// lowest returns the node of f's face at the lowest vertex in (V, U) order.
func lowest(m *mesh.Mesh, f mesh.NodeID) mesh.NodeID {
	low := f
	for n := range m.FaceLoop(f) {
		if lower(m.UV(n), m.UV(low)) {
			low = n
		}
	}
	return low
}

func lower(p, q r2.Point) bool {
	return p.Y < q.Y || (p.Y == q.Y && p.X < q.X)
}
