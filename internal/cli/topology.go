package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/flip"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
	"github.com/matzehuels/meshtopo/pkg/mesh/regularize"
	"github.com/matzehuels/meshtopo/pkg/mesh/triangulate"
	"github.com/matzehuels/meshtopo/pkg/meshio"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// regularizeCommand creates the regularize command, which runs only the
// sweep and optionally the fan triangulation.
func (c *CLI) regularizeCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
		fan    bool
	)

	cmd := &cobra.Command{
		Use:   "regularize [file]",
		Short: "Split the faces of a document into monotone faces",
		Long: `Split every bounded face of an input document into faces with exactly
one lowest and one highest vertex by inserting diagonals.

With --fan the regular faces are also triangulated. No flipping is done;
use 'run' for the full pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			_, opts, err := flags.resolve(cmd, logger)
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			m, err := doc.Mesh()
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			rep := pipeline.Report{Input: m.Counts()}
			if opts.Rotate90 {
				m.Rotate90()
			}
			rep.Regularize, err = regularize.Regularize(m, regularize.Options{Logger: logger})
			if err != nil {
				return err
			}
			if fan {
				rep.Fan = triangulate.Fan(m, triangulate.Options{Logger: logger})
			}
			if opts.Rotate90 {
				m.RotateMinus90()
			}
			prog.done("Regularized " + args[0])

			if rep.Regularize.Unconnected > 0 {
				printWarning("%d minima could not be connected", rep.Regularize.Unconnected)
			}
			printDetail("%d diagonals inserted, regular: %t", rep.Regularize.Diagonals, regularize.Regular(m))
			return c.emit(cmd.Context(), m, doc.Name, rep, opts, outputDir(output, args[0]), baseName(args[0]))
		},
	}

	flags.addRenderFlags(cmd)
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "TOML config file (default $"+configEnv+")")
	cmd.Flags().BoolVar(&flags.opts.Rotate90, "rotate90", false, "sweep along u instead of v")
	cmd.Flags().BoolVar(&fan, "fan", false, "triangulate the regular faces")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the input)")

	return cmd
}

// flipCommand creates the flip command, which improves an existing
// triangle mesh.
func (c *CLI) flipCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "flip [file]",
		Short: "Improve a triangle mesh by edge flipping",
		Long: `Flip edges of a triangle mesh until the selected predicate accepts every
edge or the flip budget is spent.

The input is a JSON document with triangles, or a result file written by
'run -f json'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			_, opts, err := flags.resolve(cmd, logger)
			if err != nil {
				return err
			}
			pred, err := opts.FlipPredicate()
			if err != nil {
				return err
			}
			if pred == nil {
				return errors.New(errors.ErrCodeInvalidPredicate, "flip needs a predicate other than %q", pipeline.PredicateNone)
			}
			m, name, err := readMesh(args[0])
			if err != nil {
				return err
			}
			if !triangulated(m) {
				return errors.New(errors.ErrCodeInvalidMesh, "%s is not a triangle mesh; use 'run' to triangulate it", args[0])
			}

			prog := newProgress(logger)
			rep := pipeline.Report{Input: m.Counts()}
			before := quality.Summarize(m)
			rep.Flip, err = flip.Improve(m, pred, flip.Options{MaxFlips: opts.MaxFlips, Logger: logger})
			if err != nil {
				return err
			}
			prog.done("Flipped " + args[0])

			printDetail("%d flips in %d attempts (limit %d)", rep.Flip.Flips, rep.Flip.Attempts, rep.Flip.Limit)
			printDetail("min quality %.4f → %.4f", before.Min, quality.Summarize(m).Min)
			if rep.Flip.Capped {
				printWarning("flip budget exhausted")
			}
			return c.emit(cmd.Context(), m, name, rep, opts, outputDir(output, args[0]), baseName(args[0])+".flipped")
		},
	}

	flags.addFlags(cmd)
	flags.addRenderFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the input)")

	return cmd
}

// emit validates m, completes the report and writes the requested
// artifacts.
func (c *CLI) emit(ctx context.Context, m *mesh.Mesh, name string, rep pipeline.Report, opts pipeline.Options, dir, base string) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeMeshCorrupt, err, "processed mesh is invalid")
	}
	rep.Output = m.Counts()
	rep.Quality = quality.Summarize(m)
	res := &pipeline.Result{Mesh: m, Output: meshio.Export(m, name), Report: rep}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := pipeline.Render(ctx, res, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data
	}
	paths, err := writeArtifacts(dir, base, artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printStats(rep.Output, rep.Quality.Triangles, false)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// triangulated reports whether every bounded face of m is a triangle.
func triangulated(m *mesh.Mesh) bool {
	for f := range m.Faces() {
		if !m.Has(f, mesh.MaskExterior) && !m.IsTriangle(f) {
			return false
		}
	}
	return true
}
