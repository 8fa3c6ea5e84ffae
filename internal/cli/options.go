package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// pipelineFlags holds the flags shared by commands that process meshes.
// Values from a config file are used unless the flag was set explicitly.
type pipelineFlags struct {
	opts    pipeline.Options
	config  string
	formats string
}

// addFlags registers the processing flags on cmd.
func (f *pipelineFlags) addFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "TOML config file (default $"+configEnv+")")
	fs.StringVarP(&f.opts.Predicate, "predicate", "p", pipeline.DefaultPredicate, "flip predicate: "+pipelineNames(pipeline.ValidPredicates))
	fs.StringVar(&f.opts.Surface, "surface", pipeline.DefaultSurface, "surface for the mapped predicate: "+pipelineNames(pipeline.ValidSurfaces))
	fs.Float64Var(&f.opts.Radius, "radius", pipeline.DefaultRadius, "cylinder or sphere radius")
	fs.Float64Var(&f.opts.PeriodU, "period-u", 0, "period of the u coordinate (0 = not periodic)")
	fs.Float64Var(&f.opts.PeriodV, "period-v", 0, "period of the v coordinate (0 = not periodic)")
	fs.Float64Var(&f.opts.ScaleU, "scale-u", 0, "scale applied to u by the aspect predicate (0 = 1)")
	fs.Float64Var(&f.opts.ScaleV, "scale-v", 0, "scale applied to v by the aspect predicate (0 = 1)")
	fs.IntVar(&f.opts.MaxFlips, "max-flips", 0, "flips allowed per edge (0 = automatic)")
}

// addRenderFlags registers the output flags on cmd.
func (f *pipelineFlags) addRenderFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	fs.IntVar(&f.opts.Width, "width", pipeline.DefaultWidth, "PNG width in pixels")
	fs.BoolVar(&f.opts.Labels, "labels", false, "label vertices in DOT and SVG output")
}

// addTopologyFlags registers the flags for the regularize and fan stages.
func (f *pipelineFlags) addTopologyFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.opts.Rotate90, "rotate90", false, "sweep along u instead of v")
	fs.Float64Var(&f.opts.MaxEdge, "max-edge", 0, "subdivide edges longer than this (0 = off)")
}

// resolve merges the config file with the flags set on cmd and validates
// the result. The options log to logger.
func (f *pipelineFlags) resolve(cmd *cobra.Command, logger *log.Logger) (*pipeline.Config, pipeline.Options, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	opts := cfg.Pipeline
	fs := cmd.Flags()

	override(fs, "predicate", &opts.Predicate, f.opts.Predicate)
	override(fs, "surface", &opts.Surface, f.opts.Surface)
	override(fs, "radius", &opts.Radius, f.opts.Radius)
	override(fs, "period-u", &opts.PeriodU, f.opts.PeriodU)
	override(fs, "period-v", &opts.PeriodV, f.opts.PeriodV)
	override(fs, "scale-u", &opts.ScaleU, f.opts.ScaleU)
	override(fs, "scale-v", &opts.ScaleV, f.opts.ScaleV)
	override(fs, "max-flips", &opts.MaxFlips, f.opts.MaxFlips)
	override(fs, "rotate90", &opts.Rotate90, f.opts.Rotate90)
	override(fs, "max-edge", &opts.MaxEdge, f.opts.MaxEdge)
	override(fs, "width", &opts.Width, f.opts.Width)
	override(fs, "labels", &opts.Labels, f.opts.Labels)

	if fs.Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return nil, pipeline.Options{}, err
	}
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, pipeline.Options{}, err
	}
	return cfg, opts, nil
}

// override sets *dst to v when the named flag exists and was set.
func override[T any](fs *pflag.FlagSet, name string, dst *T, v T) {
	if fl := fs.Lookup(name); fl != nil && fl.Changed {
		*dst = v
	}
}

func pipelineNames(set map[string]bool) string {
	return strings.Join(slices.Sorted(maps.Keys(set)), ", ")
}
