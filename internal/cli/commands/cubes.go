package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lkml2cube/internal/convert"
)

// NewCubesCommand creates the cubes command.
func NewCubesCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "cubes <file_path>",
		Short: "Generate Cube definitions from LookML views",
		Long: `Generate one Cube YAML file per LookML view.

Joins declared on explores are attached to the joined cube. Explore
"from:" aliases produce hidden cubes that extend the source view.
The path may be a glob pattern; include: statements are followed.`,
		Example: `  # Write cubes/*.yml under the current directory
  lkml2cube cubes models/*.lkml

  # Print the generated YAML instead of writing files
  lkml2cube cubes models/orders.view.lkml --printonly

  # Resolve absolute includes against a project root
  lkml2cube cubes models/orders.explore.lkml --rootdir ./looker`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookML(cmd, args[0], opts, (*convert.Converter).Cubes)
		},
	}

	addConvertFlags(cmd, opts)
	return cmd
}
