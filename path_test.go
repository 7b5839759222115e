package main

import (
	"errors"
	"testing"
)

func TestResolveDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"backslashes", `C:\apps\tool\dn.dll`, `C:\apps\tool`},
		{"forward slashes", `C:/apps/tool/dn.dll`, `C:/apps/tool`},
		{"mixed separators", `C:\apps/tool\dn.dll`, `C:\apps/tool`},
		{"mixed, forward slash last", `C:\apps\tool/dn.dll`, `C:\apps\tool`},
		{"no separator yields sentinel", `dn.dll`, rootSentinel},
		{"directory with spaces", `C:\Program Files\dn tools\dn.dll`, `C:\Program Files\dn tools`},
		{"trailing separator", `C:\apps\tool\`, `C:\apps\tool`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveDirectory(tt.in)
			if err != nil {
				t.Fatalf("resolveDirectory(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("resolveDirectory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveDirectory_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := resolveDirectory("")
	if err == nil {
		t.Fatalf("expected error for empty input")
	}
	if !errors.Is(err, errEmptyPath) {
		t.Fatalf("expected errEmptyPath, got %v", err)
	}
}
