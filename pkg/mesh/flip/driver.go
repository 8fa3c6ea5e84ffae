package flip

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshtopo/pkg/mesh"
)

const (
	// MinFlipsPerEdge is the lower bound on the per-edge flip budget.
	MinFlipsPerEdge = 20

	// edgesPerExtraFlip grows the per-edge budget on large meshes: the
	// budget is max(MinFlipsPerEdge, E/edgesPerExtraFlip).
	edgesPerExtraFlip = 60
)

// Options configures [Improve].
type Options struct {
	// Edges restricts the initial worklist. Nil means every flippable edge.
	Edges []mesh.NodeID

	// MaxFlips further limits the number of flips of one call. Zero keeps
	// the edge-count budget.
	MaxFlips int

	// Logger receives a debug summary. Nil discards it.
	Logger *log.Logger
}

// Result reports what a call to [Improve] did.
type Result struct {
	// Flips is the number of successful flips.
	Flips int `json:"flips"`
	// Attempts is the number of edges taken from the worklist.
	Attempts int `json:"attempts"`
	// Limit is the flip budget the call ran under.
	Limit int `json:"limit"`
	// Capped is true when the call stopped at Limit with work left.
	Capped bool `json:"capped"`
}

// FlipLimit returns the flip budget for a mesh with edges edges:
// edges * max(20, edges/60).
func FlipLimit(edges int) int {
	return edges * max(MinFlipsPerEdge, edges/edgesPerExtraFlip)
}

// Improve runs pred over the mesh until no queued edge flips or the flip
// budget is spent, and returns the number of flips performed.
//
// The worklist starts with every flippable edge (or opts.Edges); each
// successful flip queues the four outer edges of its quad. Termination is
// guaranteed by the budget, not by convergence: on adversarial inputs the
// mesh may not be locally optimal when Improve returns.
//
// The only error is [mesh.ErrNoFreeMask], returned before any edit.
func Improve[P Predicate](m *mesh.Mesh, pred P, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	work, err := mesh.NewEdgeSet(m)
	if err != nil {
		return Result{}, err
	}
	defer work.Close()

	if opts.Edges != nil {
		for _, n := range opts.Edges {
			if m.Valid(n) && Flippable(m, n) {
				work.Add(n)
			}
		}
	} else {
		for n := range m.Edges() {
			if Flippable(m, n) {
				work.Add(n)
			}
		}
	}

	res := Result{Limit: FlipLimit(m.EdgeCount())}
	if opts.MaxFlips > 0 && opts.MaxFlips < res.Limit {
		res.Limit = opts.MaxFlips
	}
	seeded := work.Len()

	for res.Flips < res.Limit {
		n, ok := work.ChooseAny()
		if !ok {
			break
		}
		res.Attempts++
		if Flip(m, n, pred, work.Add) {
			res.Flips++
		}
	}
	res.Capped = work.Len() > 0 && res.Flips >= res.Limit

	logger.Debug("flip pass",
		"seeded", seeded,
		"attempts", res.Attempts,
		"flips", res.Flips,
		"capped", res.Capped)
	return res, nil
}
