package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lkml2cube/internal/convert"
)

// NewViewsCommand creates the views command.
func NewViewsCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "views <file_path>",
		Short: "Generate Cube definitions and views from LookML explores",
		Long: `Generate Cube YAML for every LookML view plus one Cube view per explore.

Each Cube view starts at the explore's base view and includes every joined
cube through its join path. Views are named after the explore label unless
--use-explores-name is set.`,
		Example: `  lkml2cube views models/*.explore.lkml --outputdir ./model
  lkml2cube views models/orders.explore.lkml --use-explores-name --printonly`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookML(cmd, args[0], opts, (*convert.Converter).Views)
		},
	}

	addConvertFlags(cmd, opts)
	cmd.Flags().Bool("use-explores-name", false, "Name Cube views after explores instead of their labels")
	return cmd
}
