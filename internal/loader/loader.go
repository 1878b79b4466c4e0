// Package loader reads LookML projects: glob expansion, recursive include
// resolution and @{constant} substitution.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
)

// ErrNoFiles is returned when a pattern matches no unvisited file.
var ErrNoFiles = errors.New("no files were found on path")

// LoadContext tracks the files read by one load. Each run creates its own
// context, so repeated or concurrent loads never see each other's files.
type LoadContext struct {
	visited map[string]bool
	files   []*lookml.File
}

// NewLoadContext creates an empty context.
func NewLoadContext() *LoadContext {
	return &LoadContext{visited: make(map[string]bool)}
}

// Visited reports whether path was already loaded in this context.
func (c *LoadContext) Visited(path string) bool {
	return c.visited[filepath.Clean(path)]
}

// Files returns the parsed files in load order.
func (c *LoadContext) Files() []*lookml.File {
	return c.files
}

// Config holds loader options.
type Config struct {
	// Fs defaults to the OS filesystem
	Fs afero.Fs
	// RootDir resolves include paths; when empty they resolve against the
	// including file's directory
	RootDir string
	Logger  *slog.Logger
}

// Loader reads LookML files.
type Loader struct {
	fs      afero.Fs
	rootDir string
	logger  *slog.Logger
}

// New creates a loader.
func New(cfg Config) *Loader {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{fs: fsys, rootDir: cfg.RootDir, logger: logger}
}

// Load reads every file matching pattern and, recursively, the files they
// include. Included files are merged before the file that includes them.
// Constants declared anywhere in the load are substituted everywhere.
func (l *Loader) Load(lc *LoadContext, pattern string) (*lookml.Model, error) {
	before := len(lc.files)
	if err := l.loadPattern(lc, pattern); err != nil {
		return nil, err
	}
	files := lc.files[before:]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	constants := make(map[string]string)
	for _, f := range files {
		for _, c := range f.Constants() {
			constants[c.Name] = c.Value
		}
	}

	model := &lookml.Model{}
	for _, f := range files {
		f.SubstituteConstants(constants)
		model.Merge(lookml.Decode(f))
	}

	l.logger.Debug("loaded lookml",
		"pattern", pattern,
		"files", len(files),
		"views", len(model.Views),
		"explores", len(model.Explores))
	return model, nil
}

func (l *Loader) loadPattern(lc *LoadContext, pattern string) error {
	matches, err := l.glob(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	for _, match := range matches {
		match = filepath.Clean(match)
		if lc.visited[match] {
			continue
		}
		lc.visited[match] = true

		f, err := l.parseFile(match)
		if err != nil {
			return err
		}

		for _, include := range f.Includes() {
			if err := l.loadPattern(lc, l.resolveInclude(match, include)); err != nil {
				return err
			}
		}
		lc.files = append(lc.files, f)
	}
	return nil
}

func (l *Loader) parseFile(filePath string) (*lookml.File, error) {
	content, err := afero.ReadFile(l.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	f, err := lookml.Parse(string(content))
	if err != nil {
		var perr *lookml.ParseError
		if errors.As(err, &perr) {
			perr.File = filePath
		}
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	f.Path = filePath
	l.logger.Debug("parsed file", "path", filePath, "nodes", len(f.Nodes))
	return f, nil
}

// resolveInclude maps an include pattern to a filesystem pattern. Leading
// slashes are project-relative.
func (l *Loader) resolveInclude(from, include string) string {
	include = strings.TrimPrefix(include, "/")
	root := filepath.Dir(from)
	if l.rootDir != "" {
		root = l.rootDir
	}
	return filepath.Join(root, filepath.FromSlash(include))
}

// glob expands pattern. A "**" segment matches any number of directories.
// The static prefix of the pattern becomes the root of the searched tree.
func (l *Loader) glob(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root := filepath.FromSlash(base)
	fsys := l.fs
	if root != "." {
		fsys = afero.NewBasePathFs(l.fs, root)
	}

	matches, err := doublestar.Glob(afero.NewIOFS(fsys), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return matches, nil
}
