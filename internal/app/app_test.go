package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/xformgo/internal/app"
	"github.com/stretchr/testify/require"
)

const program = `
template "main" {
  iterate {
    select = input.orders
    param "total" { select = 0 }
    on_completion { select = "total=${total}" }
    value { select = item.id }
    next_iteration {
      with_param "total" { select = total + item.amount }
    }
  }
}
`

const orders = `{"orders": [{"id": "a", "amount": 3}, {"id": "b", "amount": 4}]}`

func setup(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, cfg app.Config, stdin string) (string, string, error) {
	t.Helper()
	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)

	var out, logs bytes.Buffer
	a := app.NewApp(strings.NewReader(stdin), &out, &logs, validated)
	err = a.Run(context.Background())
	return out.String(), logs.String(), err
}

func TestNewConfig(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{ProgramPath: "main.hcl"})
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Format)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)

	testCases := []struct {
		name        string
		cfg         app.Config
		errContains string
	}{
		{name: "no program", cfg: app.Config{}, errContains: "ProgramPath is a required"},
		{name: "format", cfg: app.Config{ProgramPath: "p", Format: "xml"}, errContains: "invalid output format"},
		{name: "log level", cfg: app.Config{ProgramPath: "p", LogLevel: "loud"}, errContains: "invalid log level"},
		{name: "log format", cfg: app.Config{ProgramPath: "p", LogFormat: "xml"}, errContains: "invalid log format"},
		{
			name:        "timeout",
			cfg:         app.Config{ProgramPath: "p", SocketIO: app.SocketIOConfig{ConnectTimeout: -1}},
			errContains: "cannot be negative",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.NewConfig(tc.cfg)
			require.ErrorContains(t, err, tc.errContains)
		})
	}
}

func TestRun(t *testing.T) {
	dir := setup(t, map[string]string{"main.hcl": program, "orders.json": orders})

	out, logs, err := run(t, app.Config{
		ProgramPath: filepath.Join(dir, "main.hcl"),
		InputPath:   filepath.Join(dir, "orders.json"),
		LogLevel:    "debug",
	}, "")
	require.NoError(t, err)
	require.JSONEq(t, `["a", "b", "total=7"]`, out)
	require.Contains(t, logs, "run_id=")
	require.Contains(t, logs, "Transformation finished.")
	require.Contains(t, logs, "items=3")
}

func TestRun_ProgramDirectoryAndStdin(t *testing.T) {
	dir := setup(t, map[string]string{
		"programs/main.hcl":  "template \"main\" {\n  call_template \"lib\" {}\n}\n",
		"programs/lib.hcl":   "template \"lib\" {\n  value { select = length(input) }\n}\n",
		"programs/README.md": "not a program",
	})

	out, _, err := run(t, app.Config{
		ProgramPath: filepath.Join(dir, "programs"),
		InputPath:   "-",
		Format:      "jsonl",
	}, `[1, 2, 3]`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestRun_OutputFile(t *testing.T) {
	dir := setup(t, map[string]string{"main.hcl": program, "orders.yaml": `
orders:
  - id: a
    amount: 1
`})
	outPath := filepath.Join(dir, "result.hcl")

	out, _, err := run(t, app.Config{
		ProgramPath: filepath.Join(dir, "main.hcl"),
		InputPath:   filepath.Join(dir, "orders.yaml"),
		OutputPath:  outPath,
		Format:      "hcl",
	}, "")
	require.NoError(t, err)
	require.Empty(t, out)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(written), "result = [")
	require.Contains(t, string(written), `"total=1"`)
}

func TestRun_CompileWarningsAreLogged(t *testing.T) {
	dir := setup(t, map[string]string{"main.hcl": `
template "main" {
  for_each {
    select = "one"
    value { select = item }
  }
}
`})
	out, logs, err := run(t, app.Config{ProgramPath: filepath.Join(dir, "main.hcl")}, "")
	require.NoError(t, err)
	require.JSONEq(t, `["one"]`, out)
	require.Contains(t, logs, "Loop over a single value")
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		files       map[string]string
		input       string
		errContains string
	}{
		{
			name:        "missing program",
			errContains: "failed to load program",
		},
		{
			name:        "compile error",
			files:       map[string]string{"main.hcl": "template \"main\" {\n  value { select = nope }\n}\n"},
			errContains: "failed to compile program",
		},
		{
			name:        "bad input",
			files:       map[string]string{"main.hcl": program, "in.json": `{`},
			input:       "in.json",
			errContains: "failed to load input",
		},
		{
			name: "terminate",
			files: map[string]string{"main.hcl": `template "main" {
  message {
    select    = "stop"
    terminate = true
  }
}`},
			errContains: "transformation failed",
		},
		{
			name: "structure error",
			files: map[string]string{"main.hcl": `template "main" {
  iterate {
    select = [1]
    param "p" { select = 0 }
  }
}`},
			errContains: "XTSE0580",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := setup(t, tc.files)
			cfg := app.Config{ProgramPath: filepath.Join(dir, "main.hcl")}
			if tc.input != "" {
				cfg.InputPath = filepath.Join(dir, tc.input)
			}
			_, _, err := run(t, cfg, "")
			require.ErrorContains(t, err, tc.errContains)
		})
	}
}
