package main

import "testing"

func TestBuildCommandLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  string
		exe  string
		args string
		want string
	}{
		{
			name: "empty args leave trailing space",
			dir:  `C:\apps\tool`,
			exe:  "dn-text-normalize.exe",
			args: "",
			want: `"C:\apps\tool\dn-text-normalize.exe" `,
		},
		{
			name: "directory with spaces stays inside quotes",
			dir:  `C:\Program Files\dn tools`,
			exe:  "dn-text-normalize.exe",
			args: "",
			want: `"C:\Program Files\dn tools\dn-text-normalize.exe" `,
		},
		{
			name: "args appended verbatim, unquoted",
			dir:  `C:\apps`,
			exe:  "tool.exe",
			args: `--mode fast input.txt`,
			want: `"C:\apps\tool.exe" --mode fast input.txt`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildCommandLine(tt.dir, tt.exe, tt.args)
			if got != tt.want {
				t.Fatalf("buildCommandLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	if got := joinPath(`C:\apps\tool`, "dn-text-normalize.exe"); got != `C:\apps\tool\dn-text-normalize.exe` {
		t.Fatalf("joinPath() = %q", got)
	}
}
