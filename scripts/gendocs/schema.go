package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/leapstack-labs/lkml2cube/internal/cli/config"
)

// configDescriptions documents every configuration key. Keys missing here
// fail generation so the reference never silently drops a setting.
var configDescriptions = map[string]string{
	"root_dir":          "Directory absolute include paths resolve against. Empty resolves includes against the including file's directory",
	"output_dir":        "Directory generated files are written to",
	"use_explores_name": "Name Cube views after explores instead of their labels",
	"verbose":           "Enable debug logging",
	"log_level":         "Log level: debug, info, warn, error",
	"output":            "Output format: auto, text, markdown, json",
	"fail_on":           "Exit non-zero when a conversion reports a diagnostic at or above this severity: error, warning, info. Empty never fails",
	"meta.url":          "Cube meta API URL used by `explores`",
	"meta.token":        "Cube API token sent as a bearer token",
	"meta.timeout":      "Timeout of one meta request",
	"meta.retries":      "Retries for failed or still-compiling meta requests",
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// getConfigSchema walks the koanf tags of config.Config.
func getConfigSchema() ([]ConfigField, error) {
	var fields []ConfigField
	var walk func(prefix string, t reflect.Type, v reflect.Value) error
	walk = func(prefix string, t reflect.Type, v reflect.Value) error {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("koanf")
			if tag == "" {
				continue
			}
			name := prefix + tag
			if f.Type.Kind() == reflect.Struct {
				if err := walk(name+".", f.Type, v.Field(i)); err != nil {
					return err
				}
				continue
			}

			desc, ok := configDescriptions[name]
			if !ok {
				return fmt.Errorf("configuration key %s has no description", name)
			}
			def := fmt.Sprint(v.Field(i).Interface())
			if v.Field(i).IsZero() {
				def = ""
			}
			fields = append(fields, ConfigField{
				Name:        name,
				Type:        f.Type.String(),
				Default:     def,
				Description: desc,
			})
		}
		return nil
	}

	def := config.Default()
	if err := walk("", reflect.TypeOf(*def), reflect.ValueOf(*def)); err != nil {
		return nil, err
	}
	return fields, nil
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fields, err := getConfigSchema()
	if err != nil {
		return err
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "lkml2cube configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("lkml2cube reads `lkml2cube.yaml` (or `lkml2cube.yml`) from the working directory, or the file given with `--config`.")

	w.Header(2, "Settings")
	headers := []string{"Key", "Type", "Default", "Environment", "Description"}
	var rows [][]string
	for _, f := range fields {
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, InlineCode(config.EnvVar(f.Name)), f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags that were set explicitly",
		"`LKML2CUBE_*` environment variables",
		"`lkml2cube.yaml`",
		"Built-in defaults",
	})

	w.Header(2, "Example")
	w.CodeBlock("yaml", `output_dir: model
root_dir: ./looker
use_explores_name: false
log_level: info

meta:
  url: https://cube.example.com/cubejs-api/v1/meta
  timeout: 30s
  retries: 3`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
