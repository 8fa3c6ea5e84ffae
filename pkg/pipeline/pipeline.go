// Package pipeline runs the complete mesh processing sequence used by the
// CLI and the HTTP server.
//
// # Stages
//
// [Runner.Execute] takes an input document through:
//
//  1. Build: construct the mesh from the document's loops or triangles
//  2. Regularize: insert diagonals until every bounded face is monotone
//     (optionally after a quarter turn, see [Options.Rotate90])
//  3. Fan: triangulate every bounded face from its lowest vertex
//  4. Subdivide: split edges longer than [Options.MaxEdge], when set
//  5. Flip: improve the triangulation with the configured predicate
//
// The processed mesh is cached under a key derived from the document hash
// and the options that affect it, and rendered artifacts are cached under
// the result hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Predicate: "aspect", Formats: []string{"svg"}}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
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
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPredicate is the flip criterion used when none is given.
	DefaultPredicate = PredicateAspect

	// DefaultSurface is the parametric surface used by the mapped predicate.
	DefaultSurface = SurfacePlane

	// DefaultRadius is the cylinder and sphere radius.
	DefaultRadius = 1.0

	// DefaultWidth is the PNG width in pixels.
	DefaultWidth = 800
)

// Predicate names.
const (
	PredicateAspect   = "aspect"
	PredicateMapped   = "mapped"
	PredicateInCircle = "incircle"
	PredicateAxisU    = "axis-u"
	PredicateAxisV    = "axis-v"
	PredicateNone     = "none"
)

// Surface names.
const (
	SurfacePlane    = "plane"
	SurfaceCylinder = "cylinder"
	SurfaceSphere   = "sphere"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidPredicates is the set of supported flip predicates.
var ValidPredicates = map[string]bool{
	PredicateAspect:   true,
	PredicateMapped:   true,
	PredicateInCircle: true,
	PredicateAxisU:    true,
	PredicateAxisV:    true,
	PredicateNone:     true,
}

// ValidSurfaces is the set of supported surfaces.
var ValidSurfaces = map[string]bool{
	SurfacePlane:    true,
	SurfaceCylinder: true,
	SurfaceSphere:   true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is read from TOML config files and
// JSON requests.
type Options struct {
	// Flip options
	Predicate string  `json:"predicate,omitempty" toml:"predicate"`
	Surface   string  `json:"surface,omitempty" toml:"surface"`
	Radius    float64 `json:"radius,omitempty" toml:"radius"`
	PeriodU   float64 `json:"period_u,omitempty" toml:"period_u"`
	PeriodV   float64 `json:"period_v,omitempty" toml:"period_v"`
	ScaleU    float64 `json:"scale_u,omitempty" toml:"scale_u"`
	ScaleV    float64 `json:"scale_v,omitempty" toml:"scale_v"`
	MaxFlips  int     `json:"max_flips,omitempty" toml:"max_flips"`

	// Topology options
	Rotate90 bool    `json:"rotate90,omitempty" toml:"rotate90"`
	MaxEdge  float64 `json:"max_edge,omitempty" toml:"max_edge"`

	// Render options
	Formats []string `json:"formats,omitempty" toml:"formats"`
	Width   int      `json:"width,omitempty" toml:"width"`
	Labels  bool     `json:"labels,omitempty" toml:"labels"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`
}

// ValidatePredicate checks that a predicate name is valid.
func ValidatePredicate(name string) error {
	if !ValidPredicates[name] {
		return errors.New(errors.ErrCodeInvalidPredicate, "invalid predicate: %q (must be one of: %s)", name, names(ValidPredicates))
	}
	return nil
}

// ValidateSurface checks that a surface name is valid.
func ValidateSurface(name string) error {
	if !ValidSurfaces[name] {
		return errors.New(errors.ErrCodeInvalidSurface, "invalid surface: %q (must be one of: %s)", name, names(ValidSurfaces))
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, names(ValidFormats))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func names(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Predicate == "" {
		o.Predicate = DefaultPredicate
	}
	if o.Surface == "" {
		o.Surface = DefaultSurface
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := ValidatePredicate(o.Predicate); err != nil {
		return err
	}
	if err := ValidateSurface(o.Surface); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"radius": o.Radius, "period_u": o.PeriodU, "period_v": o.PeriodV,
		"scale_u": o.ScaleU, "scale_v": o.ScaleV, "max_edge": o.MaxEdge,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative (got %g)", name, v)
		}
	}
	if o.Radius == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "radius must be positive")
	}
	if o.MaxFlips < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_flips must not be negative (got %d)", o.MaxFlips)
	}
	if o.Width < 16 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be at least 16 pixels (got %d)", o.Width)
	}
	return nil
}

// ResultKeyOpts returns cache key options for the processed mesh.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Predicate: fmt.Sprintf("%s/%g/%g/%g/%g", o.Predicate, o.PeriodU, o.PeriodV, o.ScaleU, o.ScaleV),
		Surface:   fmt.Sprintf("%s/%g", o.Surface, o.Radius),
		Rotate90:  o.Rotate90,
		MaxEdge:   o.MaxEdge,
		MaxFlips:  o.MaxFlips,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		opts.Width = o.Width
	case FormatDOT, FormatSVG:
		opts.Labels = o.Labels
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Report describes what each stage did.
type Report struct {
	Input      mesh.Counts                 `json:"input"`
	Output     mesh.Counts                 `json:"output"`
	Regularize regularize.Result           `json:"regularize"`
	Fan        triangulate.FanResult       `json:"fan"`
	Subdivide  triangulate.SubdivideResult `json:"subdivide"`
	Flip       flip.Result                 `json:"flip"`
	Quality    quality.Summary             `json:"quality"`
	Timings    []StageTiming               `json:"timings"`
}

// StageTiming is the wall time of one stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Mesh is the processed mesh. On a cache hit it is rebuilt from Output.
	Mesh *mesh.Mesh `json:"-"`

	// Output is the serialisable processed mesh.
	Output *meshio.Output `json:"mesh"`

	// Report holds per-stage statistics.
	Report Report `json:"report"`

	// InputHash is the content hash of the input document.
	InputHash string `json:"input_hash"`

	// ResultKey is the cache key of this result.
	ResultKey string `json:"result_key"`

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"-"`
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ResultHit bool // Whether the processed mesh came from cache
	RenderHit bool // Whether all artifacts came from cache
}
