// Package writer persists conversion results: Cube YAML files under cubes/
// and views/, LookML files under views/ and explores/.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/lkml2cube/pkg/cube"
	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
)

// Output subdirectories.
const (
	CubesDir    = "cubes"
	ViewsDir    = "views"
	ExploresDir = "explores"
)

// defaultConcurrency bounds parallel file writes.
const defaultConcurrency = 8

// Config configures a Writer.
type Config struct {
	// Fs is the target filesystem (defaults to the OS filesystem)
	Fs afero.Fs
	// OutputDir is the directory the subdirectories are created in
	OutputDir string
	// Concurrency bounds parallel writes (defaults to 8)
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Writer writes conversion results to a filesystem.
type Writer struct {
	fs          afero.Fs
	outputDir   string
	concurrency int
	lookml      *lookml.Writer
	logger      *slog.Logger
}

// New creates a writer.
func New(cfg Config) (*Writer, error) {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	lw, err := lookml.NewWriter()
	if err != nil {
		return nil, err
	}
	return &Writer{
		fs:          fs,
		outputDir:   cfg.OutputDir,
		concurrency: concurrency,
		lookml:      lw,
		logger:      logger,
	}, nil
}

// file is one pending output file.
type file struct {
	kind    string
	name    string
	path    string
	content []byte
}

// WriteCube writes one YAML file per cube under cubes/ and one per view
// under views/.
func (w *Writer) WriteCube(ctx context.Context, doc cube.Document) (*Summary, error) {
	cubes, views := doc.Split()

	files := make([]file, 0, len(cubes)+len(views))
	for _, d := range cubes {
		content, err := MarshalYAML(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cube %s: %w", d.Cubes[0].Name, err)
		}
		files = append(files, w.file(KindCube, d.Cubes[0].Name, CubesDir, d.Cubes[0].Name+".yml", content))
	}
	for _, d := range views {
		content, err := MarshalYAML(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode view %s: %w", d.Views[0].Name, err)
		}
		files = append(files, w.file(KindView, d.Views[0].Name, ViewsDir, d.Views[0].Name+".yml", content))
	}
	return w.writeAll(ctx, files)
}

// WriteLookML writes one file per view under views/ and one per explore
// under explores/. Explores include the views they use.
func (w *Writer) WriteLookML(ctx context.Context, m lookml.Model) (*Summary, error) {
	files := make([]file, 0, len(m.Views)+len(m.Explores))
	for _, v := range m.Views {
		content, err := w.lookml.View(v)
		if err != nil {
			return nil, fmt.Errorf("failed to render view %s: %w", v.Name, err)
		}
		files = append(files, w.file(KindLookMLView, v.Name, ViewsDir, v.Name+".view.lkml", []byte(content)))
	}
	for _, e := range m.Explores {
		content, err := w.lookml.Explore(e, lookml.ExploreIncludes(e, m.Views))
		if err != nil {
			return nil, fmt.Errorf("failed to render explore %s: %w", e.Name, err)
		}
		files = append(files, w.file(KindExplore, e.Name, ExploresDir, e.Name+".explore.lkml", []byte(content)))
	}
	return w.writeAll(ctx, files)
}

// RenderLookML renders a LookML model as one text stream, views first.
func (w *Writer) RenderLookML(m lookml.Model) (string, error) {
	var buf bytes.Buffer
	for _, v := range m.Views {
		content, err := w.lookml.View(v)
		if err != nil {
			return "", fmt.Errorf("failed to render view %s: %w", v.Name, err)
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	for _, e := range m.Explores {
		content, err := w.lookml.Explore(e, nil)
		if err != nil {
			return "", fmt.Errorf("failed to render explore %s: %w", e.Name, err)
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func (w *Writer) file(kind, name, dir, base string, content []byte) file {
	return file{
		kind:    kind,
		name:    name,
		path:    filepath.Join(w.outputDir, dir, base),
		content: content,
	}
}

// dedupe drops every file whose path a later file also targets, so the
// last declared element wins regardless of write scheduling.
func (w *Writer) dedupe(files []file) []file {
	last := make(map[string]int, len(files))
	for i, f := range files {
		last[f.path] = i
	}
	if len(last) == len(files) {
		return files
	}
	out := make([]file, 0, len(last))
	for i, f := range files {
		if last[f.path] != i {
			w.logger.Warn("duplicate output path, keeping the last element", "kind", f.kind, "name", f.name, "path", f.path)
			continue
		}
		out = append(out, f)
	}
	return out
}

func (w *Writer) writeAll(ctx context.Context, files []file) (*Summary, error) {
	files = w.dedupe(files)
	dirs := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f.path)
		if dirs[dir] {
			continue
		}
		if err := w.fs.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var (
		mu      sync.Mutex
		entries = make([]Entry, 0, len(files))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := afero.WriteFile(w.fs, f.path, f.content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.path, err)
			}
			w.logger.Debug("wrote file", "kind", f.kind, "name", f.name, "path", f.path)

			mu.Lock()
			entries = append(entries, Entry{Kind: f.kind, Name: f.name, Path: f.path})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{Entries: entries}
	s.sort()
	w.logger.Info("files written", "count", len(entries), "output_dir", w.outputDir)
	return s, nil
}

// MarshalYAML encodes a Cube document with two-space indentation.
func MarshalYAML(doc cube.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
