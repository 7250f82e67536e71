// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/specialistvlad/xformgo/internal/app"
	"github.com/specialistvlad/xformgo/internal/compiler"
	"github.com/specialistvlad/xformgo/internal/config"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type options struct {
	cfgFile   string
	program   string
	input     string
	output    string
	format    string
	template  string
	logLevel  string
	logFormat string

	sioURL       string
	sioNamespace string
	sioEvent     string
	sioInsecure  bool
	sioTimeout   time.Duration
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		opts   options
		result *app.Config
	)

	root := &cobra.Command{
		Use:   "xformgo [flags] [PROGRAM_PATH]",
		Short: "xformgo - run HCL transformation programs over JSON, YAML and HCL documents",
		Long: `xformgo runs a transformation program over an input document and writes
the resulting items as JSON, JSON lines or HCL.

Arguments:
  PROGRAM_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Settings can also come from a TOML file given with --config or the
` + config.EnvVar + ` environment variable. Flags override the file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("program") {
					return fmt.Errorf("program path given both as argument and with --program")
				}
				opts.program = args[0]
				if err := cmd.Flags().Set("program", args[0]); err != nil {
					return err
				}
			}

			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			if cfg.ProgramPath == "" {
				slog.Debug("No program path provided, printing usage and exiting.")
				return cmd.Usage()
			}

			result, err = app.NewConfig(cfg)
			return err
		},
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	flags := root.Flags()
	flags.StringVarP(&opts.cfgFile, "config", "c", os.Getenv(config.EnvVar), "Path to a TOML configuration file.")
	flags.StringVarP(&opts.program, "program", "p", "", "Path to the program file or directory.")
	flags.StringVarP(&opts.input, "input", "i", "", "Input document (.json, .yaml, .yml, .hcl), or '-' for JSON on stdin.")
	flags.StringVarP(&opts.output, "output", "o", "-", "Output file, or '-' for stdout.")
	flags.StringVarP(&opts.format, "format", "f", "json", "Output format. Options: 'json', 'jsonl' or 'hcl'.")
	flags.StringVarP(&opts.template, "template", "t", "", "Initial template name (default \"main\").")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.sioURL, "socketio-url", "", "Also publish every result item to this socket.io server.")
	flags.StringVar(&opts.sioNamespace, "socketio-namespace", "", "socket.io namespace.")
	flags.StringVar(&opts.sioEvent, "socketio-event", "result", "socket.io event name for result items.")
	flags.BoolVar(&opts.sioInsecure, "socketio-insecure", false, "Skip TLS certificate verification for socket.io.")
	flags.DurationVar(&opts.sioTimeout, "socketio-timeout", 15*time.Second, "How long to wait for the socket.io connection.")

	listed := false
	root.AddCommand(&cobra.Command{
		Use:   "functions",
		Short: "List the functions available to program expressions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range compiler.FunctionNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			listed = true
		},
	})

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if listed || result == nil {
		// Help, usage or a subcommand was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", result)
	return result, false, nil
}

// config merges the configuration file, when there is one, with the flags.
// A flag wins over the file only when it was set explicitly.
func (o *options) config(cmd *cobra.Command) (app.Config, error) {
	file := &config.File{}
	if o.cfgFile != "" {
		loaded, err := config.Load(o.cfgFile)
		if err != nil {
			return app.Config{}, err
		}
		file = loaded
		slog.Debug("Configuration file loaded.", "path", o.cfgFile)
	}

	flags := cmd.Flags()
	str := func(name, fromFile, fromFlag string) string {
		if fromFile == "" || flags.Changed(name) {
			return fromFlag
		}
		return fromFile
	}

	insecure := file.SocketIO.InsecureSkipVerify
	if flags.Changed("socketio-insecure") {
		insecure = o.sioInsecure
	}
	timeout := file.SocketIO.ConnectTimeout.Duration
	if timeout == 0 || flags.Changed("socketio-timeout") {
		timeout = o.sioTimeout
	}

	return app.Config{
		ProgramPath: str("program", file.Program, o.program),
		InputPath:   str("input", file.Input, o.input),
		OutputPath:  str("output", file.Output, o.output),
		Format:      strings.ToLower(str("format", file.Format, o.format)),
		Template:    str("template", file.Template, o.template),
		LogLevel:    strings.ToLower(str("log-level", file.Log.Level, o.logLevel)),
		LogFormat:   strings.ToLower(str("log-format", file.Log.Format, o.logFormat)),
		SocketIO: app.SocketIOConfig{
			URL:                str("socketio-url", file.SocketIO.URL, o.sioURL),
			Namespace:          str("socketio-namespace", file.SocketIO.Namespace, o.sioNamespace),
			Event:              str("socketio-event", file.SocketIO.Event, o.sioEvent),
			InsecureSkipVerify: insecure,
			ConnectTimeout:     timeout,
		},
	}, nil
}
