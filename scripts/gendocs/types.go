package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/lkml2cube/pkg/typemap"
)

// generateTypeDocs generates the type mapping reference page.
func generateTypeDocs(outDir string) error {
	log.Printf("Generating type mapping docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Type Mapping", "How LookML and Cube field types map onto each other")
	w.GeneratedMarker()

	w.Header(1, "Type Mapping")
	w.Paragraph("Fields whose type has no mapping are skipped and reported as `unsupported-type` diagnostics.")

	w.Header(2, "LookML to Cube")
	var rows [][]string
	for _, kind := range typemap.Kinds(typemap.Forward) {
		mapped, _ := typemap.Map(kind, typemap.Forward)
		roundTrip := "Yes"
		if typemap.Collapsed(kind) {
			roundTrip = "No"
		}
		rows = append(rows, []string{InlineCode(kind), InlineCode(mapped), roundTrip})
	}
	w.Table([]string{"LookML type", "Cube type", "Round-trips"}, rows)

	w.Header(2, "Cube to LookML")
	rows = nil
	for _, kind := range typemap.Kinds(typemap.Reverse) {
		mapped, _ := typemap.Map(kind, typemap.Reverse)
		rows = append(rows, []string{InlineCode(kind), InlineCode(mapped)})
	}
	w.Table([]string{"Cube type", "LookML type"}, rows)

	w.Header(2, "Tiers")
	example, err := typemap.Tier("{CUBE}.amount", []float64{0, 10, 100})
	if err != nil {
		return err
	}
	w.Paragraph("`tier` dimensions become a number dimension whose SQL buckets the value. " +
		"`tiers: [0, 10, 100]` on `${TABLE}.amount` produces:")
	w.CodeBlock("sql", example)
	w.Paragraph("Values at or above the last boundary fall through to `NULL`.")

	filename := filepath.Join(outDir, "types.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated types.md")
	return nil
}
