package importer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/mpapenbr/racelog-report/log"
)

// Watch re-imports the input files after they were changed until ctx is done.
// The parent directories are watched so that editors replacing a file
// (rename on save) are noticed as well.
//
//nolint:funlen,gocognit,cyclop // by design
func (i *Importer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := lo.Map(i.sources.paths(), func(p string, _ int) string {
		return filepath.Clean(p)
	})
	dirs := lo.Uniq(lo.Map(files, func(p string, _ int) string {
		return filepath.Dir(p)
	}))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	i.log.Info("watching input files", log.Strings("files", files))

	timer := time.NewTimer(i.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			i.log.Info("context done, stopping watcher")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				i.log.Info("watcher events channel closed, stopping watcher")
				return nil
			}
			if !lo.Contains(files, filepath.Clean(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) {
				continue
			}
			i.log.Debug("change detected",
				log.String("file", event.Name), log.String("op", event.Op.String()))
			timer.Reset(i.debounce)
		case <-timer.C:
			imported, err := i.ImportIfChanged(ctx)
			if err != nil {
				i.log.Error("re-import failed", log.ErrorField(err))
				continue
			}
			if imported {
				i.log.Info("input changed, report re-imported")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				i.log.Info("watcher errors channel closed, stopping watcher")
				return nil
			}
			i.log.Error("watcher error", log.ErrorField(err))
		}
	}
}
