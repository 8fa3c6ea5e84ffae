package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// renderCommand creates the render command, which draws an existing mesh
// without processing it.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a mesh to DOT, SVG or PNG",
		Long: `Render a mesh as it is, without regularizing or flipping it.

DOT and SVG output pin every vertex at its coordinates and lay the graph out
with neato; boundary edges are drawn bold and edges between exterior faces
dashed. PNG output shades triangles by aspect ratio.

The input is a document (JSON or SVG) or a result file written by 'run'.`,
		Example: `  meshtopo render -f svg plate.mesh.json
  meshtopo render -f png --width 1600 plate.mesh.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				flags.formats = pipeline.FormatSVG
			}
			_, opts, err := flags.resolve(cmd, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output)
		},
	}

	flags.addRenderFlags(cmd)
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "TOML config file (default $"+configEnv+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the input)")

	return cmd
}

// runRender loads the mesh and writes the requested formats.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	m, name, err := readMesh(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	printSuccess("Rendering %s", name)
	return c.emit(ctx, m, name, pipeline.Report{Input: m.Counts()}, opts, outputDir(output, input), baseName(input))
}
