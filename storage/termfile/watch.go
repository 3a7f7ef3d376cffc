package termfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
)

// Watch re-imports the file at path into saver whenever it is written or re-created, until ctx is done.
// The parent directory is watched so files replaced by editors keep being followed.
// Reload failures are logged and do not stop the watcher.
func Watch(ctx context.Context, path string, saver Saver, logger core.Logger) error {
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	if err = w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "watching term dates file")
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				reload(ctx, path, saver, logger)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error(fmt.Sprintf("watching %s: %v", path, err))
			}
		}
	}()
	return nil
}

func reload(ctx context.Context, path string, saver Saver, logger core.Logger) {
	dates, err := Load(path)
	if err == nil {
		err = Apply(ctx, saver, dates)
	}
	if err != nil {
		logger.Error(fmt.Sprintf("reloading %s: %v", path, err))
		return
	}
	logger.Info(fmt.Sprintf("%s reloaded", path))
}
