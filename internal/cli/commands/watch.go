package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of events, as editors write files in several steps.
const watchDebounce = 100 * time.Millisecond

// watchLookML calls run whenever a .lkml file under dir is written or
// created, until ctx is done. Errors from run are passed to report.
func watchLookML(ctx context.Context, dir string, logger *slog.Logger, run func() error, report func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDirRecursive(watcher, event.Name)
					continue
				}
			}
			if filepath.Ext(event.Name) != ".lkml" {
				continue
			}
			logger.Debug("change detected", "file", event.Name)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C
		case <-fire:
			fire = nil
			if err := run(); err != nil {
				report(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds dir and every non-hidden subdirectory to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && len(info.Name()) > 0 && info.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
