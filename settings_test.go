package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	writeTemp := func(t *testing.T, contents string) string {
		t.Helper()

		dir := t.TempDir()
		path := filepath.Join(dir, "dn-hotkey.toml")
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatalf("write temp settings: %v", err)
		}
		return path
	}

	t.Run("parses logging section", func(t *testing.T) {
		t.Parallel()

		path := writeTemp(t, `
[logging]
path = "C:\\temp\\dn-hotkey.log"
verbose = true
`)

		s, err := loadSettings(path)
		if err != nil {
			t.Fatalf("loadSettings: %v", err)
		}
		if s.Logging.Path != `C:\temp\dn-hotkey.log` {
			t.Fatalf("unexpected log path: %q", s.Logging.Path)
		}
		if !s.Logging.Verbose {
			t.Fatalf("expected verbose=true")
		}
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()

		s, err := loadSettings(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("loadSettings: %v", err)
		}
		if s.Logging.Path != "" || s.Logging.Verbose {
			t.Fatalf("expected zero defaults, got %+v", s)
		}
	})

	t.Run("wraps decode errors", func(t *testing.T) {
		t.Parallel()

		path := writeTemp(t, `
[logging]
path =
`)

		_, err := loadSettings(path)
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "decode") {
			t.Fatalf("expected wrapped decode error, got %q", err.Error())
		}
	})
}
