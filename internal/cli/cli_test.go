package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		args         []string
		want         *app.Config
		wantExit     bool
		wantCode     int
		wantErr      string
		wantInOutput string
	}{
		{
			name: "full flag set",
			args: []string{
				"-graph", "looks/", "-output", "surface.out", "-o", "displacement.out",
				"-var", "frame=10", "-suffix", "preview", "-hash-only",
				"-log-format", "JSON", "-log-level", "DEBUG", "-workers", "8",
			},
			want: &app.Config{
				GraphPath:   "looks/",
				Outputs:     []string{"surface.out", "displacement.out"},
				Suffix:      "preview",
				Variables:   []string{"frame=10"},
				LogFormat:   "json",
				LogLevel:    "debug",
				WorkerCount: 8,
				HashOnly:    true,
			},
		},
		{
			name: "positional graph path and defaults",
			args: []string{"-o", "surface.out", "looks/main.hcl"},
			want: &app.Config{
				GraphPath:   "looks/main.hcl",
				Outputs:     []string{"surface.out"},
				LogFormat:   "text",
				LogLevel:    "info",
				WorkerCount: 4,
			},
		},
		{
			name: "shorthand graph flag",
			args: []string{"-g", "looks", "-o", "surface.out"},
			want: &app.Config{
				GraphPath:   "looks",
				Outputs:     []string{"surface.out"},
				LogFormat:   "text",
				LogLevel:    "info",
				WorkerCount: 4,
			},
		},
		{
			name:         "help",
			args:         []string{"-h"},
			wantExit:     true,
			wantInOutput: "Usage:",
		},
		{
			name:         "no graph path prints usage",
			args:         []string{"-o", "surface.out"},
			wantExit:     true,
			wantInOutput: "GRAPH_PATH",
		},
		{
			name:     "unknown flag",
			args:     []string{"-nope"},
			wantCode: 2,
			wantErr:  "flag provided but not defined: -nope",
		},
		{
			name:     "invalid log format",
			args:     []string{"-log-format", "xml", "-o", "a.out", "looks"},
			wantCode: 2,
			wantErr:  "invalid log-format",
		},
		{
			name:     "invalid log level",
			args:     []string{"-log-level", "loud", "-o", "a.out", "looks"},
			wantCode: 2,
			wantErr:  "invalid log-level",
		},
		{
			name:     "missing output",
			args:     []string{"looks"},
			wantCode: 2,
			wantErr:  "at least one output is required",
		},
		{
			name:     "malformed variable",
			args:     []string{"-o", "a.out", "-var", "frame", "looks"},
			wantCode: 2,
			wantErr:  "expected name=value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			var out bytes.Buffer

			// --- Act ---
			cfg, exit, err := Parse(tc.args, &out)

			// --- Assert ---
			if tc.wantErr != "" {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantInOutput != "" {
				assert.Contains(t, out.String(), tc.wantInOutput)
			}
			if diff := cmp.Diff(tc.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
