package regularize

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r2"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

// Options configures [Regularize].
type Options struct {
	// Logger receives per-pass debug summaries. Nil discards them.
	Logger *log.Logger
}

// Result reports what a call to [Regularize] did.
type Result struct {
	// Diagonals is the number of edges inserted over both passes.
	Diagonals int `json:"diagonals"`
	// Unconnected counts downward minima no channel bracketed.
	Unconnected int `json:"unconnected"`
}

// Regularize inserts diagonals until every bounded face has a single local
// minimum and a single local maximum in (V, U) order.
//
// It sweeps bottom to top, rotates the mesh by 180°, sweeps again and
// rotates back, so the coordinates are unchanged on return. Faces carrying
// [mesh.MaskExterior] are never swept. New edges are announced to the mesh
// listener as [mesh.EventJoinOld].
//
// The only error is [mesh.ErrNoFreeMask], returned before any edit.
func Regularize(m *mesh.Mesh, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var res Result
	err := m.WithMask(func(upBit mesh.Mask) error {
		for pass := 0; pass < 2; pass++ {
			s := &sweep{m: m, upBit: upBit}
			s.run()
			logger.Debug("regularize pass",
				"pass", pass+1,
				"minima", s.minima,
				"diagonals", s.diagonals,
				"unconnected", s.unconnected)
			res.Diagonals += s.diagonals
			res.Unconnected += s.unconnected
			m.Rotate180()
		}
		return nil
	})
	return res, err
}

// sweep holds the state of one bottom-to-top pass.
type sweep struct {
	m        *mesh.Mesh
	upBit    mesh.Mask
	channels []*channel
	comps    components

	minima      int
	diagonals   int
	unconnected int
}

type minimum struct {
	n        mesh.NodeID
	downward bool
}

func (s *sweep) up(n mesh.NodeID) bool { return s.m.Has(n, s.upBit) }

// classify marks every rising node with upBit.
func (s *sweep) classify() {
	m := s.m
	m.ClearAll(s.upBit)
	for i := 0; i < m.Len(); i++ {
		if n := mesh.NodeID(i); rising(m, n) {
			m.Set(n, s.upBit)
		}
	}
}

// findMinima returns the face minima of bounded faces in sweep order,
// downward minima first where vertices coincide.
func (s *sweep) findMinima() []minimum {
	m := s.m
	var mins []minimum
	for i := 0; i < m.Len(); i++ {
		n := mesh.NodeID(i)
		if m.Has(n, mesh.MaskExterior) {
			continue
		}
		prev := m.FPred(n)
		if s.up(prev) || !s.up(n) {
			continue
		}
		p0, p1, p2 := m.UV(prev), m.UV(n), m.UV(m.FSucc(n))
		turn := p1.Sub(p0).Cross(p2.Sub(p1))
		mins = append(mins, minimum{n: n, downward: turn <= 0 || m.VSucc(n) == n})
	}
	slices.SortStableFunc(mins, func(a, b minimum) int {
		pa, pb := m.UV(a.n), m.UV(b.n)
		switch {
		case below(pa, pb):
			return -1
		case below(pb, pa):
			return 1
		case a.downward != b.downward:
			if a.downward {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.n, b.n)
	})
	return mins
}

func (s *sweep) run() {
	s.classify()
	s.comps = newComponents(s.m)
	mins := s.findMinima()
	s.minima = len(mins)
	for _, mn := range mins {
		p := s.m.UV(mn.n)
		s.settle(p)
		if c := s.bracketing(mn.n); c != nil {
			s.connect(c, mn.n)
			continue
		}
		if mn.downward {
			s.unconnected++
			continue
		}
		s.channels = append(s.channels, &channel{left: s.m.FPred(mn.n), right: mn.n, top: mn.n})
	}
}

// settle advances every channel to height p, closing channels whose
// boundaries meet at a peak and merging neighbours that share one.
func (s *sweep) settle(p r2.Point) {
	for changed := true; changed; {
		changed = false
		for _, c := range s.channels {
			if s.advance(c, p) {
				changed = true
			}
		}
		for i, c := range s.channels {
			pk, ok := s.peak(c, p)
			if !ok {
				continue
			}
			if s.m.FSucc(c.right) == pk {
				s.channels = slices.Delete(s.channels, i, i+1)
				changed = true
				break
			}
			if j := s.arrivingAt(pk); j >= 0 && j != i {
				left := s.channels[j]
				left.right = c.right
				left.top = pk
				s.channels = slices.Delete(s.channels, i, i+1)
				changed = true
				break
			}
		}
	}
}

// arrivingAt returns the index of the channel whose right boundary runs
// into pk, or -1.
func (s *sweep) arrivingAt(pk mesh.NodeID) int {
	return slices.IndexFunc(s.channels, func(c *channel) bool {
		return s.m.FSucc(c.right) == pk
	})
}

// bracketing returns the first channel strictly containing n that n can
// be joined to: one on n's own face or on a component not yet connected to
// n.
func (s *sweep) bracketing(n mesh.NodeID) *channel {
	p := s.m.UV(n)
	for _, c := range s.channels {
		if s.brackets(c, p) && s.joinable(c.top, n) {
			return c
		}
	}
	return nil
}

func (s *sweep) joinable(a, b mesh.NodeID) bool {
	return sameFace(s.m, a, b) || s.comps.find(a) != s.comps.find(b)
}

// connect joins c's top to the minimum n and splits c in two: the part left
// of the new diagonal keeps c, the part right of it is appended. A minimum
// that coincides with the top stays unconnected.
func (s *sweep) connect(c *channel, n mesh.NodeID) {
	m := s.m
	if m.UV(c.top) == m.UV(n) {
		s.unconnected++
		return
	}
	arriving := m.FPred(n)
	na, nb := m.Join(c.top, n)
	s.comps.joined(c.top, n, na, nb)
	m.Set(na, s.upBit)
	m.Clear(nb, s.upBit)
	m.Notify(mesh.EventJoinOld, na, nb)
	s.diagonals++

	s.channels = append(s.channels, &channel{left: arriving, right: c.right, top: nb})
	c.right = n
	c.top = n
}

// Extrema counts the local minima and maxima of n's face in sweep order.
// A regular face has one of each.
func Extrema(m *mesh.Mesh, n mesh.NodeID) (mins, maxs int) {
	for p := range m.FaceLoop(n) {
		in, out := rising(m, m.FPred(p)), rising(m, p)
		switch {
		case !in && out:
			mins++
		case in && !out:
			maxs++
		}
	}
	return mins, maxs
}

// Regular reports whether every bounded face has exactly one local minimum
// and one local maximum.
func Regular(m *mesh.Mesh) bool {
	for f := range m.Faces() {
		if m.Has(f, mesh.MaskExterior) {
			continue
		}
		if mins, maxs := Extrema(m, f); mins != 1 || maxs != 1 {
			return false
		}
	}
	return true
}
