package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// shouldReloadSettings reports whether an fsnotify event warrants re-reading
// the settings file.
func shouldReloadSettings(settingsPath, settingsBase string, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == settingsPath {
		return true
	}
	// Editors that write via temp file + rename report partial paths.
	return filepath.Base(name) == settingsBase
}

// startSettingsWatcher watches the settings file for changes and posts
// reload messages to hwnd, so the reload itself runs on the hook thread.
//
// Parameters:
//   - hwnd: Handle to the message-only window that receives reload messages.
//   - path: Full path to the settings file.
//
// Returns:
//   - *fsnotify.Watcher: A watcher the caller should close when done.
//   - error: Non-nil if the watcher cannot be created or the directory cannot be watched.
func startSettingsWatcher(hwnd uintptr, path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watching the directory is more reliable on Windows than watching the
	// file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, err
	}
	path = filepath.Clean(path)
	base := filepath.Base(path)

	go func() {
		var last time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !shouldReloadSettings(path, base, event) {
					continue
				}
				// Debounce noisy editor save patterns.
				if time.Since(last) < 200*time.Millisecond {
					continue
				}
				last = time.Now()
				debugf("Settings change detected: %s", event.Name)
				postMessageW.Call(hwnd, WM_APP_RELOAD, 0, 0) //nolint:errcheck

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Printf("Settings watcher error: %v", err)
			}
		}
	}()
	return watcher, nil
}
