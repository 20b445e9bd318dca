package evdevio

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"os"
	"path/filepath"
)

var ErrWatcherClosed = errors.New("device watcher closed")

// WaitForDevice returns once path exists, watching its directory for the node to
// show up. Keyboards plugged in after the daemon starts are picked up this way.
func WaitForDevice(ctx context.Context, path string, log *zap.SugaredLogger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// it may have appeared between the first check and the watch
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	log.Infow("waiting for keyboard", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || !ev.Has(fsnotify.Create) {
				continue
			}
			log.Infow("keyboard appeared", "path", path)
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}
