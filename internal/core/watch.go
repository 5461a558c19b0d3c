package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchPagesFile re-applies the override file whenever it is written or
// replaced, until ctx is done. The directory is watched rather than the
// file because editors often save by renaming over it.
func WatchPagesFile(ctx context.Context, path string, logger *slog.Logger) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch pages file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch pages file: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if name, _ := filepath.Abs(event.Name); name != absPath {
					continue
				}
				reloadPagesFile(absPath, logger)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("pages file watcher error", "error", err)
			}
		}
	}()

	return nil
}

func reloadPagesFile(path string, logger *slog.Logger) {
	file, err := LoadPagesFile(path)
	if err != nil {
		logger.Error("pages file reload failed", "path", path, "error", err)
		return
	}
	keys, err := ApplyPages(file)
	if err != nil {
		logger.Error("pages file reload failed", "path", path, "error", err)
		return
	}
	logger.Info("pages file reloaded", "path", path, "pages", keys)
}
