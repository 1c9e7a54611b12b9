package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Reports   []Report
	LogOutput string
	Err       error
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg)
}

// RunIntegrationTestWithContext writes files (relative paths to HCL
// sources) into a temporary graph directory and runs the full application
// against it. cfg supplies everything but the graph path and logging.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	graphDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(graphDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg.GraphPath = graphDir
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err, "harness config must be valid")

	logBuffer := &SafeBuffer{}
	var out bytes.Buffer
	runErr := app.NewApp(&out, logBuffer, appConfig).Run(ctx)

	if os.Getenv("SHADERNET_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result := &HarnessResult{LogOutput: logBuffer.String(), Err: runErr}
	if runErr == nil {
		reports, err := decodeReports(out.Bytes())
		require.NoError(t, err, "application wrote malformed reports:\n%s", out.String())
		result.Reports = reports
	}
	return result
}

func decodeReports(raw []byte) ([]Report, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var reports []Report
	for dec.More() {
		var r Report
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decoding report %d: %w", len(reports), err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
