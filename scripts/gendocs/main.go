// Package main provides a generator that extracts CLI, configuration, and
// type mapping metadata from lkml2cube source code and generates markdown
// documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=config -outdir=docs/reference
//	go run ./scripts/gendocs -gen=types -outdir=docs/reference
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, config, types, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

// generators maps each -gen value to its generator and default output directory.
var generators = []struct {
	name   string
	outDir string
	run    func(outDir string) error
}{
	{"cli", filepath.Join("docs", "cli"), generateCLIDocs},
	{"config", filepath.Join("docs", "reference"), generateConfigDocs},
	{"types", filepath.Join("docs", "reference"), generateTypeDocs},
}

func main() {
	flag.Parse()

	valid := *genFlag == "all"
	for _, g := range generators {
		valid = valid || g.name == *genFlag
	}
	if !valid {
		log.Fatalf("unknown -gen value: %s (use: cli, config, types, all)", *genFlag)
	}

	// Find project root (where go.mod is)
	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}

	log.Printf("Project root: %s", projectRoot)

	for _, g := range generators {
		if *genFlag != "all" && *genFlag != g.name {
			continue
		}
		outDir := filepath.Join(projectRoot, g.outDir)
		if *outDirFlag != "" && *genFlag != "all" {
			outDir = *outDirFlag
		}
		if err := g.run(outDir); err != nil {
			log.Fatalf("failed to generate %s docs: %v", g.name, err)
		}
	}

	log.Println("Done!")
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
