package cli

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/observability"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// runOpts holds the flags of the run command that are not pipeline options.
type runOpts struct {
	output  string
	jobs    int
	noCache bool
	refresh bool
}

// runCommand creates the run command, which processes input documents
// through the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var (
		flags pipelineFlags
		ro    runOpts
	)

	cmd := &cobra.Command{
		Use:   "run [file...]",
		Short: "Regularize, triangulate and flip meshes",
		Long: `Run the full pipeline on one or more input documents.

Each input is a JSON document (vertices plus loops or triangles) or an SVG
file whose polygons and rects become loops. The faces are swept into
monotone faces, fanned into triangles, optionally subdivided and finally
improved by edge flipping with the selected predicate.

Results are cached locally, keyed by the input and the options. Inputs are
processed concurrently (see --jobs).`,
		Example: `  meshtopo run plate.json
  meshtopo run -p mapped --surface cylinder --radius 2 -f json,png shell.svg
  meshtopo run -o out/ -j 4 parts/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, opts, err := flags.resolve(cmd, logger)
			if err != nil {
				return err
			}
			if ro.output != "" {
				if err := errors.ValidatePath(ro.output); err != nil {
					return err
				}
			}
			opts.Refresh = ro.refresh
			return c.runRun(cmd.Context(), args, cfg, opts, ro)
		},
	}

	flags.addFlags(cmd)
	flags.addTopologyFlags(cmd)
	flags.addRenderFlags(cmd)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output directory (default: next to each input)")
	cmd.Flags().IntVarP(&ro.jobs, "jobs", "j", runtime.NumCPU(), "number of inputs processed concurrently")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runOutcome is the result of processing one input.
type runOutcome struct {
	input string
	res   *pipeline.Result
	paths []string
}

// runRun processes every input and prints a summary in input order.
func (c *CLI) runRun(ctx context.Context, inputs []string, cfg *pipeline.Config, opts pipeline.Options, ro runOpts) error {
	runner, err := c.newRunner(ctx, cfg.Cache, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.SetMeshHooks(observability.LogMeshHooks{Logger: c.Logger})
	}

	var spinner *Spinner
	if c.Logger.GetLevel() > log.DebugLevel {
		spinner = newSpinnerWithContext(ctx, "Processing "+inputs[0]+"...")
		spinner.Start()
		defer spinner.Stop()
	}
	var done atomic.Int32

	prog := newProgress(c.Logger)
	outcomes := make([]runOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, ro.jobs))
	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.processFile(gctx, runner, input, opts, ro.output)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outcomes[i] = out
			if n := done.Add(1); spinner != nil && len(inputs) > 1 {
				spinner.SetMessage("Processed %d/%d meshes...", n, len(inputs))
			}
			return nil
		})
	}
	err = g.Wait()
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d mesh(es)", len(outcomes)))

	for _, out := range outcomes {
		printSuccess("Processed %s", out.input)
		printStats(out.res.Report.Output, out.res.Report.Quality.Triangles, out.res.CacheInfo.ResultHit)
		for _, p := range out.paths {
			printFile(p)
		}
	}
	if len(outcomes) == 1 && outcomes[0].res.Report.Quality.Inverted > 0 {
		printWarning("%d inverted triangles remain", outcomes[0].res.Report.Quality.Inverted)
	}
	return nil
}

// processFile runs the pipeline on one input and writes its artifacts.
func (c *CLI) processFile(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) (runOutcome, error) {
	doc, err := readDocument(input)
	if err != nil {
		return runOutcome{}, err
	}
	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		return runOutcome{}, err
	}
	paths, err := writeArtifacts(outputDir(output, input), baseName(input), res.Artifacts)
	if err != nil {
		return runOutcome{}, fmt.Errorf("write output: %w", err)
	}
	return runOutcome{input: input, res: res, paths: paths}, nil
}
