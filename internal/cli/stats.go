package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
	"github.com/matzehuels/meshtopo/pkg/meshio"
)

// statsCommand creates the stats command for inspecting a mesh.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Print counts and triangle quality of a mesh",
		Long: `Print vertex, edge, face and component counts of a mesh and, for its
triangles, the distribution of the aspect ratio 4√3·area/Σ(edge²), which is
1 for equilateral triangles and tends to 0 for slivers.

The input is a document (JSON or SVG) or a result file written by 'run'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, name, err := readMesh(args[0])
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			counts := m.Counts()
			summary := quality.Summarize(m)

			if asJSON {
				return meshio.WriteJSON(os.Stdout, struct {
					Name    string          `json:"name"`
					Counts  mesh.Counts     `json:"counts"`
					Quality quality.Summary `json:"quality"`
				}{name, counts, summary})
			}

			fmt.Println(StyleTitle.Render(name))
			printKeyValue("vertices", fmt.Sprint(counts.Vertices))
			printKeyValue("edges", fmt.Sprint(counts.Edges))
			printKeyValue("faces", fmt.Sprint(counts.Faces))
			printKeyValue("components", fmt.Sprint(counts.Components))
			printKeyValue("euler", fmt.Sprint(counts.Euler()))
			printNewline()
			printQuality(summary)
			if !triangulated(m) {
				printNewline()
				printNextStep("Triangulate it", "meshtopo run "+args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
