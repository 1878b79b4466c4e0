package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lkml2cube/internal/cli/output"
	"github.com/leapstack-labs/lkml2cube/pkg/cubeapi"
)

// ErrMissingMetaURL is returned when no meta URL is given as argument or config.
var ErrMissingMetaURL = errors.New("a Cube meta API URL must be provided as argument or meta.url")

// ExploresOptions holds flags for the explores command.
type ExploresOptions struct {
	ParseOnly bool
	PrintOnly bool
}

// NewExploresCommand creates the explores command.
func NewExploresCommand() *cobra.Command {
	opts := &ExploresOptions{}

	cmd := &cobra.Command{
		Use:   "explores [metaurl]",
		Short: "Generate LookML views and explores from a Cube deployment",
		Long: `Fetch the data model from the Cube meta API and generate LookML.

Cubes with a data source become LookML views. Cube views become explores
with joins reconstructed from the cubes they reference.`,
		Example: `  lkml2cube explores https://cube.example.com/cubejs-api/v1/meta --token $CUBE_TOKEN
  LKML2CUBE_META_TOKEN=... lkml2cube explores http://localhost:4000/cubejs-api/v1/meta --printonly`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplores(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ParseOnly, "parseonly", false, "Print the fetched meta data and exit")
	cmd.Flags().BoolVar(&opts.PrintOnly, "printonly", false, "Print the generated LookML to stdout instead of writing files")
	cmd.Flags().String("outputdir", ".", "Directory the generated files are written to")
	cmd.Flags().String("token", "", "Cube API token")
	cmd.Flags().Duration("timeout", cubeapi.DefaultTimeout, "Meta request timeout")
	cmd.Flags().Int("retries", cubeapi.DefaultRetries, "Retries for failed meta requests")
	cmd.Flags().String("fail-on", "", "Exit non-zero on diagnostics at or above this severity (error, warning, info)")
	return cmd
}

func runExplores(cmd *cobra.Command, args []string, opts *ExploresOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	metaURL := cc.Cfg.Meta.URL
	if len(args) > 0 {
		metaURL = args[0]
	}
	if metaURL == "" {
		return ErrMissingMetaURL
	}

	client, err := cubeapi.NewClient(cubeapi.Config{
		URL:     metaURL,
		Token:   cc.Cfg.Meta.Token,
		Timeout: cc.Cfg.Meta.Timeout,
		Retries: cc.Cfg.Meta.Retries,
		Logger:  cc.Logger,
	})
	if err != nil {
		return err
	}

	meta, err := client.Meta(ctx)
	if err != nil {
		return err
	}
	if opts.ParseOnly {
		return cc.Renderer.JSON(meta)
	}

	res, err := cc.Converter().Reverse(meta)
	if err != nil {
		return err
	}

	w, err := cc.Writer()
	if err != nil {
		return err
	}

	if opts.PrintOnly {
		renderDiagnostics(cc.Renderer, res.Diagnostics)
		if cc.Renderer.EffectiveMode() == output.ModeJSON {
			if err := cc.Renderer.JSON(res.LookML); err != nil {
				return err
			}
			return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
		}
		text, err := w.RenderLookML(res.LookML)
		if err != nil {
			return err
		}
		cc.Renderer.Printf("%s", text)
		return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
	}

	summary, err := w.WriteLookML(ctx, res.LookML)
	if err != nil {
		return err
	}
	if err := renderReport(cc.Renderer, res, summary, cc.Cfg.OutputDir); err != nil {
		return err
	}
	return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
}
