package model

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the trained-model artifact at path and swaps a freshly
// loaded model into gw each time the file is written. It runs until ctx is
// cancelled.
//
// If a reload fails (e.g., truncated JSON mid-write), the error is logged and
// the previous predictor remains active — Watch never swaps in a broken model.
func Watch(ctx context.Context, path string, gw *Gateway) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("model: watching artifact for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Training jobs often
			// replace the artifact via rename (atomic save), so also catch
			// fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			tm, err := LoadArtifact(path)
			if err != nil {
				slog.Error("model: artifact reload failed — keeping previous model",
					"path", path, "err", err)
				continue
			}

			gw.Swap(tm, true)
			slog.Info("model: artifact reloaded", "path", path, "model", tm.Name())

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("model: watcher error", "err", err)
		}
	}
}
