// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/compiler"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/engine"
	"github.com/specialistvlad/xformgo/internal/input"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/specialistvlad/xformgo/internal/sink"
	"github.com/zclconf/go-cty/cty"
)

// Run executes one transformation: the program is loaded and compiled, the
// input document read, and every result item written to the configured
// sinks.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx = ctxlog.With(ctx, "run_id", uuid.New().String())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")
	started := time.Now()

	prog, err := a.compile(ctx)
	if err != nil {
		return err
	}

	doc, err := input.Load(ctx, a.config.InputPath, a.stdin)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	out, writer, err := a.openSinks(ctx)
	if err != nil {
		return err
	}

	logger.Info("Starting transformation.", "template", prog.Initial.String())
	runErr := engine.Run(ctx, prog, doc, out)
	closeErr := out.Close()

	if runErr != nil {
		return fmt.Errorf("transformation failed: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to finish output: %w", closeErr)
	}

	logger.Info("Transformation finished.", "items", writer.Count(), "duration", time.Since(started))
	return nil
}

func (a *App) compile(ctx context.Context) (*engine.Program, error) {
	logger := ctxlog.FromContext(ctx)

	src, err := model.LoadProgram(ctx, a.config.ProgramPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	prog, diags := compiler.Compile(ctx, src, compiler.Options{Initial: a.config.Template})
	var errs hcl.Diagnostics
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			errs = append(errs, d)
			continue
		}
		attrs := []any{"detail", d.Detail}
		if d.Subject != nil {
			attrs = append(attrs, "at", d.Subject.String())
		}
		logger.Warn(d.Summary, attrs...)
	}
	if errs.HasErrors() {
		return nil, fmt.Errorf("failed to compile program: %w", errs)
	}
	logger.Debug("Program compiled.", "templates", len(prog.Templates), "extensions", len(prog.Extensions))
	return prog, nil
}

// openSinks builds the output chain: the formatted writer, then the
// socket.io publisher when one is configured. On error everything already
// opened is closed again.
func (a *App) openSinks(ctx context.Context) (sink.Sink, *sink.Writer, error) {
	logger := ctxlog.FromContext(ctx)

	w := a.outW
	var file *os.File
	if path := a.config.OutputPath; path != "" && path != input.Stdin {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		logger.Debug("Writing results to file.", "path", path)
		file, w = f, f
	}

	writer, err := sink.NewWriter(w, sink.Format(a.config.Format))
	if err != nil {
		closeFile(file)
		return nil, nil, err
	}
	sinks := sink.Tee{writer}
	if file != nil {
		sinks = append(sinks, fileCloser{file})
	}

	if sio := a.config.SocketIO; sio.URL != "" {
		pub, err := sink.DialSocketIO(ctx, sink.SocketIOOptions{
			URL:                sio.URL,
			Namespace:          sio.Namespace,
			Event:              sio.Event,
			InsecureSkipVerify: sio.InsecureSkipVerify,
			ConnectTimeout:     sio.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("failed to open socket.io sink: %w", err), sinks.Close())
		}
		sinks = append(sinks, pub)
	}

	return sinks, writer, nil
}

// fileCloser closes the output file after the writer has flushed into it.
type fileCloser struct{ f *os.File }

func (fileCloser) Emit(cty.Value) error { return nil }

func (c fileCloser) Close() error { return c.f.Close() }

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}
