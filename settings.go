package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// SettingsFile is the optional TOML settings file. It only tunes ambient
// behavior; the chord and the companion executable are fixed.
type SettingsFile struct {
	Logging LoggingSettings `toml:"logging"`
}

type LoggingSettings struct {
	Path    string `toml:"path"`
	Verbose bool   `toml:"verbose"`
}

// loadSettings reads the TOML settings file at path. A missing file is not
// an error: the listener runs fine on defaults.
func loadSettings(path string) (*SettingsFile, error) {
	var s SettingsFile
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &s, nil
}

// reloadSettings re-reads the settings file and applies the logging section.
// Called at startup and whenever the watcher signals a change.
func reloadSettings() error {
	s, err := loadSettings(settingsPath)
	if err != nil {
		return err
	}
	applyLogging(s.Logging)
	logger.Printf("Settings applied from %s", settingsPath)
	return nil
}
