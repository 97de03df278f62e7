package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// reloadDebounceDuration is how long the watcher waits for further file
// events before reloading. Editors and other processes often write config
// files in multiple steps.
const reloadDebounceDuration = 100 * time.Millisecond

// configFileWatcher watches the config file for external changes and reloads
// it. The watcher is set on the directory, as config files are commonly
// replaced instead of written in place.
func configFileWatcher(w *mgr.WorkerCtx) error {
	if configFilePath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(configFilePath)); err != nil {
		return err
	}

	reload := time.NewTimer(reloadDebounceDuration)
	if !reload.Stop() {
		<-reload.C
	}
	defer reload.Stop()

	for {
		select {
		case <-w.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("config file watcher closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(configFilePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Debounce: wait for the writer to finish.
			reload.Reset(reloadDebounceDuration)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("config file watcher closed")
			}
			w.Warn("config file watcher error", "err", err)

		case <-reload.C:
			err := loadConfig(false)
			switch {
			case err == nil:
				w.Info("reloaded config file", "file", configFilePath)
				if vErrs := GetLoadedConfigValidationErrors(); len(vErrs) > 0 {
					w.Warn("config file reload had validation errors", "errCnt", len(vErrs))
				}
			case errors.Is(err, fs.ErrNotExist):
				// File was removed, treat like an empty config.
				ReplaceConfig(nil)
				w.Info("config file removed, reset to defaults")
			default:
				w.Warn("failed to reload config file", "err", err)
			}
		}
	}
}
