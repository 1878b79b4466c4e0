package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lkml2cube/internal/cli/output"
	"github.com/leapstack-labs/lkml2cube/internal/convert"
	"github.com/leapstack-labs/lkml2cube/internal/loader"
	"github.com/leapstack-labs/lkml2cube/internal/writer"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
)

// ConvertOptions holds the flags shared by the LookML conversion commands.
type ConvertOptions struct {
	ParseOnly bool // Print the parsed LookML and exit
	PrintOnly bool // Print generated YAML instead of writing files
	Watch     bool // Re-run on LookML changes
}

// pipeline is a forward conversion entry point of convert.Converter.
type pipeline func(*convert.Converter, *core.Model) (*convert.Result, error)

func addConvertFlags(cmd *cobra.Command, opts *ConvertOptions) {
	cmd.Flags().BoolVar(&opts.ParseOnly, "parseonly", false, "Print the parsed LookML model and exit")
	cmd.Flags().BoolVar(&opts.PrintOnly, "printonly", false, "Print the generated YAML to stdout instead of writing files")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-run the conversion when LookML files change")
	cmd.Flags().String("outputdir", ".", "Directory the generated files are written to")
	cmd.Flags().String("rootdir", "", "Directory that absolute include paths are resolved against")
	cmd.Flags().String("fail-on", "", "Exit non-zero on diagnostics at or above this severity (error, warning, info)")
}

// runLookML converts once, then keeps converting on changes in watch mode.
func runLookML(cmd *cobra.Command, pattern string, opts *ConvertOptions, run pipeline) error {
	cc := NewCommandContext(cmd)
	once := func() error {
		return convertLookML(cmd.Context(), cc, pattern, opts, run)
	}

	err := once()
	if !opts.Watch {
		return err
	}
	if err != nil {
		cc.Renderer.Error(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	dir := watchRoot(pattern, cc.Cfg.RootDir)
	cc.Renderer.Println(cc.Renderer.Muted("Watching " + dir + " for changes. Press Ctrl+C to stop"))
	return watchLookML(ctx, dir, cc.Logger, once, func(err error) {
		cc.Renderer.Error(err.Error())
	})
}

func convertLookML(ctx context.Context, cc *CommandContext, pattern string, opts *ConvertOptions, run pipeline) error {
	model, err := loadLookML(cc, pattern)
	if err != nil {
		return err
	}
	if opts.ParseOnly {
		return cc.Renderer.JSON(model)
	}

	res, err := run(cc.Converter(), convert.FromLookML(model))
	if err != nil {
		return err
	}

	if opts.PrintOnly {
		if err := printCube(cc, res); err != nil {
			return err
		}
		return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
	}

	w, err := cc.Writer()
	if err != nil {
		return err
	}
	summary, err := w.WriteCube(ctx, res.Cube)
	if err != nil {
		return err
	}
	if err := renderReport(cc.Renderer, res, summary, cc.Cfg.OutputDir); err != nil {
		return err
	}
	return checkFailOn(cc.Cfg.FailOn, res.Diagnostics)
}

func loadLookML(cc *CommandContext, pattern string) (*lookml.Model, error) {
	l := loader.New(loader.Config{
		RootDir: cc.Cfg.RootDir,
		Logger:  cc.Logger,
	})
	return l.Load(loader.NewLoadContext(), pattern)
}

// printCube writes the generated document to stdout and diagnostics to stderr.
func printCube(cc *CommandContext, res *convert.Result) error {
	renderDiagnostics(cc.Renderer, res.Diagnostics)
	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(res.Cube)
	}
	data, err := writer.MarshalYAML(res.Cube)
	if err != nil {
		return err
	}
	cc.Renderer.Printf("%s", data)
	return nil
}

// watchRoot returns the directory to watch for a load: the root directory
// when set, otherwise the static prefix of the pattern.
func watchRoot(pattern, rootDir string) string {
	if rootDir != "" {
		return rootDir
	}
	if i := strings.IndexAny(pattern, "*?["); i >= 0 {
		pattern = pattern[:i]
		if pattern == "" || strings.HasSuffix(pattern, string(filepath.Separator)) || strings.HasSuffix(pattern, "/") {
			return filepath.Clean(pattern + ".")
		}
	}
	return filepath.Dir(pattern)
}
