package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/lkml2cube/internal/cli"
	"github.com/leapstack-labs/lkml2cube/internal/cli/config"
)

// exitCodes mirrors cmd/lkml2cube.
var exitCodes = [][]string{
	{InlineCode("0"), "Success, possibly with conversion diagnostics on stderr"},
	{InlineCode("1"), "Error (check stderr for details)"},
	{InlineCode("2"), "Diagnostics reached the `--fail-on` level; output was still written"},
}

// generateCLIDocs writes index.md and one page per documented command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	if err := writePage(filepath.Join(outDir, "index.md"), cliIndex(root)); err != nil {
		return err
	}
	for _, cmd := range documented(root) {
		if err := writePage(filepath.Join(outDir, cmd.Name()+".md"), commandPage(cmd)); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func writePage(path string, w *MarkdownWriter) error {
	return os.WriteFile(path, w.Bytes(), 0600)
}

// documented returns the subcommands that get a page.
func documented(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "__complete" {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for lkml2cube")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("lkml2cube converts LookML projects into Cube data models and generates LookML from a running Cube deployment.")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/lkml2cube/cmd/lkml2cube@latest\nlkml2cube <command> [options]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Every configuration key is read from an `" + config.EnvPrefix + "` variable. " +
		"Flags that were set explicitly win over the environment, which wins over `lkml2cube.yaml`.")
	if fields, err := getConfigSchema(); err == nil {
		var envRows [][]string
		for _, f := range fields {
			envRows = append(envRows, []string{InlineCode(config.EnvVar(f.Name)), InlineCode(f.Name), f.Description})
		}
		w.Table([]string{"Variable", "Key", "Description"}, envRows)
	}

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, exitCodes)
	return w
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(firstNonEmpty(cmd.Long, cmd.Short))

	w.Header(2, "Usage")
	use := cmd.UseLine()
	if cmd.HasSubCommands() {
		use = "lkml2cube " + cmd.Name() + " <subcommand>"
	}
	w.CodeBlock("bash", use)

	if len(cmd.Aliases) > 0 {
		w.Paragraph("Aliases: " + InlineCode(strings.Join(cmd.Aliases, "`, `")))
	}

	if subs := documented(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagHeaders, flagRows(cmd.LocalFlags()))
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, flagRows(cmd.InheritedFlags()))
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w
}

var flagHeaders = []string{"Option", "Default", "Config key", "Environment", "Description"}

// flagRows lists flags with the config key and environment variable that
// feed the same setting. Flags outside the config get "-" in both columns.
func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option = InlineCode("-"+f.Shorthand) + ", " + option
		}

		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}

		key, env := "-", "-"
		if k := config.FlagKey(f.Name); k != "" {
			key, env = InlineCode(k), InlineCode(config.EnvVar(k))
		}
		rows = append(rows, []string{option, def, key, env, cleanDescription(f.Usage)})
	})
	return rows
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
