package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/xformgo/internal/app"
	"github.com/stretchr/testify/require"
)

// LogsEnvVar dumps the captured log output of every harness run when set to
// "true".
const LogsEnvVar = "XFORMGO_TEST_LOGS"

// SafeBuffer collects log output written from several goroutines.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Options tunes a harness run. Paths are relative to the test directory.
type Options struct {
	Input    string // input document; "" for none
	Stdin    string
	Format   string // defaults to jsonl
	Template string
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string
	Output    string
	LogOutput string
	Err       error
}

// Items splits JSON-lines output into one string per result item.
func (r *HarnessResult) Items() []string {
	trimmed := strings.TrimSuffix(r.Output, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// RunIntegrationTest is RunIntegrationTestWithContext with a background
// context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts)
}

// RunIntegrationTestWithContext writes files into a fresh directory and runs
// the application over it. Program files go below "program/"; everything
// else is free-form (inputs, extension scripts).
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	programDir := filepath.Join(tmpDir, "program")
	require.NoError(t, os.Mkdir(programDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if opts.Format == "" {
		opts.Format = "jsonl"
	}
	inputPath := opts.Input
	if inputPath != "" && inputPath != "-" {
		inputPath = filepath.Join(tmpDir, inputPath)
	}

	cfg, err := app.NewConfig(app.Config{
		ProgramPath: programDir,
		InputPath:   inputPath,
		Format:      opts.Format,
		Template:    opts.Template,
		LogLevel:    "debug",
		LogFormat:   "text",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	logBuffer := &SafeBuffer{}
	runErr := app.NewApp(strings.NewReader(opts.Stdin), &out, logBuffer, cfg).Run(ctx)

	if os.Getenv(LogsEnvVar) == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Dir:       tmpDir,
		Output:    out.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
	}
}
