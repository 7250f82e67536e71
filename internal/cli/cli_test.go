package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/xformgo/internal/cli"
	"github.com/specialistvlad/xformgo/internal/config"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg, exit, err := cli.Parse(args, out)
	if err == nil {
		require.True(t, exit)
		require.Nil(t, cfg)
	}
	return out, err
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	cfg, exit, err := cli.Parse([]string{"main.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, "main.hcl", cfg.ProgramPath)
	require.Equal(t, "-", cfg.OutputPath)
	require.Equal(t, "json", cfg.Format)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "result", cfg.SocketIO.Event)
	require.Equal(t, 15*time.Second, cfg.SocketIO.ConnectTimeout)
}

func TestParse_Flags(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	cfg, _, err := cli.Parse([]string{
		"-p", "prog",
		"-i", "in.yaml",
		"-o", "out.hcl",
		"--format", "HCL",
		"--template", "x:start",
		"--log-level", "DEBUG",
		"--log-format", "json",
		"--socketio-url", "http://localhost:3000/socket.io/",
		"--socketio-timeout", "2s",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "prog", cfg.ProgramPath)
	require.Equal(t, "in.yaml", cfg.InputPath)
	require.Equal(t, "out.hcl", cfg.OutputPath)
	require.Equal(t, "hcl", cfg.Format)
	require.Equal(t, "x:start", cfg.Template)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "http://localhost:3000/socket.io/", cfg.SocketIO.URL)
	require.Equal(t, 2*time.Second, cfg.SocketIO.ConnectTimeout)
}

func TestParse_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xformgo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
program = "main.hcl"
input   = "data.json"
format  = "jsonl"

[log]
level = "warn"

[socketio]
url                  = "https://example.test/socket.io/"
insecure_skip_verify = true
`), 0o644))

	t.Run("file values", func(t *testing.T) {
		t.Setenv(config.EnvVar, "")
		cfg, _, err := cli.Parse([]string{"--config", path}, &bytes.Buffer{})
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "main.hcl"), cfg.ProgramPath)
		require.Equal(t, filepath.Join(dir, "data.json"), cfg.InputPath)
		require.Equal(t, "jsonl", cfg.Format)
		require.Equal(t, "warn", cfg.LogLevel)
		require.True(t, cfg.SocketIO.InsecureSkipVerify)
		require.Equal(t, 15*time.Second, cfg.SocketIO.ConnectTimeout)
	})

	t.Run("flags win", func(t *testing.T) {
		t.Setenv(config.EnvVar, path)
		cfg, _, err := cli.Parse([]string{"--format", "json", "--socketio-insecure=false", "other.hcl"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.Equal(t, "other.hcl", cfg.ProgramPath)
		require.Equal(t, "json", cfg.Format)
		require.Equal(t, "warn", cfg.LogLevel)
		require.False(t, cfg.SocketIO.InsecureSkipVerify)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(config.EnvVar, "")
		_, _, err := cli.Parse([]string{"--config", filepath.Join(dir, "nope.toml")}, &bytes.Buffer{})
		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		require.Equal(t, 2, exitErr.Code)
		require.Contains(t, exitErr.Message, "config file not found")
	})
}

func TestParse_ShouldExit(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	out, err := parse(t, "-h")
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")

	out, err = parse(t)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")

	out, err = parse(t, "functions")
	require.NoError(t, err)
	require.Contains(t, out.String(), "current_group\n")
	require.Contains(t, out.String(), "upper\n")
}

func TestParse_Errors(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	testCases := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "unknown flag", args: []string{"--nope"}, errContains: "unknown flag: --nope"},
		{name: "too many args", args: []string{"a.hcl", "b.hcl"}, errContains: "accepts at most 1 arg"},
		{name: "program twice", args: []string{"-p", "a.hcl", "b.hcl"}, errContains: "both as argument and with --program"},
		{name: "log level", args: []string{"--log-level", "loud", "a.hcl"}, errContains: "invalid log level"},
		{name: "log format", args: []string{"--log-format", "xml", "a.hcl"}, errContains: "invalid log format"},
		{name: "format", args: []string{"-f", "csv", "a.hcl"}, errContains: "invalid output format"},
		{name: "timeout", args: []string{"--socketio-timeout", "soon", "a.hcl"}, errContains: "invalid argument"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := cli.Parse(tc.args, &bytes.Buffer{})
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.errContains)
		})
	}
}
