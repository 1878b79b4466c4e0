package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lkml2cube/internal/cli/config"
	"github.com/leapstack-labs/lkml2cube/internal/cli/output"
	"github.com/leapstack-labs/lkml2cube/internal/convert"
	"github.com/leapstack-labs/lkml2cube/internal/writer"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Converter creates a converter configured from the command context.
func (cc *CommandContext) Converter() *convert.Converter {
	return convert.New(convert.Options{
		UseExploresName: cc.Cfg.UseExploresName,
		Logger:          cc.Logger,
	})
}

// Writer creates a file writer for the configured output directory.
func (cc *CommandContext) Writer() (*writer.Writer, error) {
	return writer.New(writer.Config{
		OutputDir: cc.Cfg.OutputDir,
		Logger:    cc.Logger,
	})
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// ErrFailOn is returned when a run reports diagnostics at or above the
// configured fail_on severity.
var ErrFailOn = errors.New("diagnostics at or above the fail-on level")

// checkFailOn returns ErrFailOn when diags reach the level threshold.
// An empty level never fails.
func checkFailOn(level string, diags core.Diagnostics) error {
	if level == "" {
		return nil
	}
	threshold, ok := core.ParseSeverity(level)
	if !ok {
		return fmt.Errorf("invalid fail-on level %q: must be error, warning or info", level)
	}
	if n := diags.AtLeast(threshold); n > 0 {
		return fmt.Errorf("%w: %d at %s or above", ErrFailOn, n, threshold)
	}
	return nil
}

// runReport is the JSON form of a written conversion.
type runReport struct {
	RunID       string           `json:"run_id"`
	Files       []writer.Entry   `json:"files"`
	Diagnostics core.Diagnostics `json:"diagnostics"`
}

// renderReport prints the written files and the run's diagnostics.
func renderReport(r *output.Renderer, res *convert.Result, summary *writer.Summary, outputDir string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		rep := runReport{RunID: res.RunID, Files: summary.Entries, Diagnostics: res.Diagnostics}
		if rep.Files == nil {
			rep.Files = []writer.Entry{}
		}
		if rep.Diagnostics == nil {
			rep.Diagnostics = core.Diagnostics{}
		}
		return r.JSON(rep)
	case output.ModeMarkdown:
		r.Header(2, "Generated files")
		summary.RenderMarkdown(r.Writer())
		if len(res.Diagnostics) > 0 {
			r.Println("")
			r.Header(2, fmt.Sprintf("Diagnostics (%d)", len(res.Diagnostics)))
			for _, d := range res.Diagnostics {
				r.Println("- " + d.String())
			}
		}
	default:
		summary.Render(r.Writer())
		renderDiagnostics(r, res.Diagnostics)
		r.Success(fmt.Sprintf("%d files written to %s", len(summary.Entries), r.Styles().Path.Render(outputDir)))
	}
	return nil
}

// renderDiagnostics writes diagnostics to error output, one per line.
func renderDiagnostics(r *output.Renderer, diags core.Diagnostics) {
	styles := r.Styles()
	for _, d := range diags {
		_, _ = fmt.Fprintln(r.ErrWriter(), getSeverityStyle(styles, d.Severity).Render(d.String()))
	}
}

func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}
