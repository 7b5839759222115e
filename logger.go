package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var logger *log.Logger

// Logging state, only touched from the hook thread (startup and WM_APP_RELOAD
// handling both run there).
var (
	verbose         bool
	activeLogFile   *os.File
	activeLogPath   string
	fallbackLogPath string
)

// setupLogging directs the logger at path, or stdout when path is empty.
// Works the same in console, agent and service mode.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		log.SetOutput(os.Stdout)
		log.SetFlags(0)
		logger = log.New(os.Stdout, "", 0)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	logger = log.New(f, "[dn-hotkey] ", log.LstdFlags)
	return f, nil
}

// applyLogging applies the logging section of the settings file. The log
// destination from settings wins over the -l flag; an empty setting falls
// back to the flag value.
func applyLogging(ls LoggingSettings) {
	verbose = ls.Verbose

	path := ls.Path
	if path == "" {
		path = fallbackLogPath
	}
	if path == activeLogPath {
		return
	}

	f, err := setupLogging(path)
	if err != nil {
		logger.Printf("Cannot switch log to %s: %v", path, err)
		return
	}
	old := activeLogFile
	activeLogFile = f
	activeLogPath = path
	if old != nil {
		old.Close() //nolint:errcheck
	}
}

// debugf logs only when verbose logging is enabled in the settings file.
func debugf(format string, args ...any) {
	if verbose {
		logger.Printf(format, args...)
	}
}
