package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/lkml2cube/internal/cli/output"
	"github.com/spf13/cobra"
)

// configFileName is the file init writes and config loading looks for first.
const configFileName = "lkml2cube.yaml"

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an lkml2cube configuration file",
		Long: `Create an lkml2cube.yaml configuration file with every setting and its default.

Use --example to also create a small LookML project (views with a derived
table, tiers and a dimension group, plus an explore with chained joins) to
try the conversion commands on.`,
		Example: `  # Initialize in current directory
  lkml2cube init

  # Initialize with an example LookML project
  lkml2cube init --example

  # Initialize in a new directory
  lkml2cube init my-project --example

  # Force overwrite existing config
  lkml2cube init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example LookML project")

	return cmd
}

// prepareInitDir creates dir and refuses to replace an existing config without force.
func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, configFileName)); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFileName)
	}
	return nil
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.Println(r.Styles().Success.Render("✓") + " " + f)
	}

	r.Println("")
	r.Success("lkml2cube initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set root_dir to your LookML project")
	r.Println("  2. Run 'lkml2cube cubes <file_path>' to generate cubes")
	r.Println("  3. Run 'lkml2cube doctor <file_path>' to check what converts as-is")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	for i, group := range []string{"config", "views", "explores"} {
		if i > 0 {
			r.Println("")
		}
		r.Header(2, titleCase(group))
		for _, f := range groups[group] {
			r.Println(r.Styles().Success.Render("✓") + " " + f)
		}
	}

	r.Println("")
	r.Success("lkml2cube initialized with an example project!")
	r.Println("")
	r.Println("Next steps:")
	r.Println(`  lkml2cube views "explores/*.explore.lkml" --printonly   Preview cubes and views`)
	r.Println(`  lkml2cube views "explores/*.explore.lkml"               Write them to model/`)
	r.Println(`  lkml2cube doctor "explores/*.explore.lkml"              Check conversion health`)

	return nil
}
