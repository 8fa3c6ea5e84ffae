package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshtopo/pkg/cache"
	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/flip"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
	"github.com/matzehuels/meshtopo/pkg/mesh/regularize"
	"github.com/matzehuels/meshtopo/pkg/mesh/triangulate"
	"github.com/matzehuels/meshtopo/pkg/meshio"
	"github.com/matzehuels/meshtopo/pkg/observability"
)

// Stage names reported to hooks and in [Report.Timings].
const (
	StageRegularize = "regularize"
	StageFan        = "fan"
	StageSubdivide  = "subdivide"
	StageFlip       = "flip"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner with different options. Meshes are never
// shared between runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds the document's mesh, processes it and renders the
// requested formats, using the cache for both the processed mesh and the
// artifacts.
func (r *Runner) Execute(ctx context.Context, doc *meshio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	res, err := r.ProcessDocument(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	artifacts, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	return res, nil
}

// ProcessDocument returns the processed mesh for doc, from the cache when
// possible.
func (r *Runner) ProcessDocument(ctx context.Context, doc *meshio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	inputHash, err := doc.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}
	key := r.Keyer.ResultKey(inputHash, opts.ResultKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cachedResult(ctx, key); ok {
			opts.Logger.Debug("result cache hit", "key", key)
			return res, nil
		}
	}

	m, err := doc.Mesh()
	if err != nil {
		return nil, err
	}
	report, err := r.Process(ctx, m, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Mesh:      m,
		Output:    meshio.Export(m, doc.Name),
		Report:    report,
		InputHash: inputHash,
		ResultKey: key,
	}
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.ResultTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return res, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Output == nil {
		return nil, false
	}
	m, err := meshio.Import(res.Output)
	if err != nil {
		return nil, false
	}
	res.Mesh = m
	res.CacheInfo.ResultHit = true
	return &res, true
}

// Process runs the topology and flip stages on m in place.
func (r *Runner) Process(ctx context.Context, m *mesh.Mesh, opts Options) (Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Report{}, err
	}
	logger := opts.Logger

	pred, err := opts.FlipPredicate()
	if err != nil {
		return Report{}, err
	}

	rep := Report{Input: m.Counts()}
	run := func(name string, fn func() (int, error)) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "%s", name)
		}
		observability.Mesh().OnStageStart(ctx, name, m.EdgeCount())
		start := time.Now()
		edits, err := fn()
		d := time.Since(start)
		observability.Mesh().OnStageComplete(ctx, name, edits, d, err)
		rep.Timings = append(rep.Timings, StageTiming{Stage: name, Duration: d})
		if err != nil {
			return stageError(name, err)
		}
		logger.Debug("stage done", "stage", name, "edits", edits, "duration", d)
		return nil
	}

	if opts.Rotate90 {
		m.Rotate90()
	}
	err = run(StageRegularize, func() (int, error) {
		res, err := regularize.Regularize(m, regularize.Options{Logger: logger})
		rep.Regularize = res
		return res.Diagonals, err
	})
	if err != nil {
		return rep, err
	}
	if rep.Regularize.Unconnected > 0 {
		logger.Warn("regularize left unconnected minima", "count", rep.Regularize.Unconnected)
	}
	err = run(StageFan, func() (int, error) {
		rep.Fan = triangulate.Fan(m, triangulate.Options{Logger: logger})
		return rep.Fan.Diagonals, nil
	})
	if err != nil {
		return rep, err
	}
	if opts.Rotate90 {
		m.RotateMinus90()
	}

	if opts.MaxEdge > 0 {
		err = run(StageSubdivide, func() (int, error) {
			res, err := triangulate.Subdivide(m, triangulate.MaxLength(opts.MaxEdge), triangulate.Options{Logger: logger})
			rep.Subdivide = res
			return res.Splits, err
		})
		if err != nil {
			return rep, err
		}
	}

	if pred != nil {
		err = run(StageFlip, func() (int, error) {
			res, err := flip.Improve(m, pred, flip.Options{MaxFlips: opts.MaxFlips, Logger: logger})
			rep.Flip = res
			return res.Flips, err
		})
		if err != nil {
			return rep, err
		}
		if rep.Flip.Capped {
			logger.Warn("flip budget exhausted", "flips", rep.Flip.Flips, "limit", rep.Flip.Limit)
		}
	}

	if err := m.Validate(); err != nil {
		return rep, errors.Wrap(errors.ErrCodeMeshCorrupt, err, "processed mesh is invalid")
	}
	rep.Output = m.Counts()
	rep.Quality = quality.Summarize(m)
	logger.Info("processed mesh",
		"vertices", rep.Output.Vertices,
		"triangles", rep.Quality.Triangles,
		"flips", rep.Flip.Flips,
		"min_quality", fmt.Sprintf("%.3f", rep.Quality.Min))
	return rep, nil
}

func stageError(stage string, err error) error {
	if stderrors.Is(err, mesh.ErrNoFreeMask) {
		return errors.Wrap(errors.ErrCodeMaskExhausted, err, "%s", stage)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", stage)
}

// RenderWithCacheInfo renders every requested format and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(res.Output)
	if err != nil {
		return nil, false, fmt.Errorf("serialize mesh for cache key: %w", err)
	}
	resultHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(resultHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false
		out, err := Render(ctx, res, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = out
		_ = r.Cache.Set(ctx, key, out, cache.RenderTTL)
	}
	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
