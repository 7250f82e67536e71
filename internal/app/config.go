// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/specialistvlad/xformgo/internal/sink"
)

// LogLevels and LogFormats list the accepted logging settings.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProgramPath string // .hcl file or directory
	InputPath   string // "" for none, "-" for stdin
	OutputPath  string // "" or "-" for the app's output writer
	Format      string
	Template    string

	LogFormat string
	LogLevel  string

	SocketIO SocketIOConfig
}

// SocketIOConfig enables publishing results to a socket.io server.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProgramPath == "" {
		return nil, errors.New("ProgramPath is a required configuration field and cannot be empty")
	}

	if cfg.Format == "" {
		cfg.Format = string(sink.FormatJSON)
	}
	if _, err := sink.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %v", cfg.LogLevel, LogLevels)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, LogFormats)
	}

	if cfg.SocketIO.ConnectTimeout < 0 {
		return nil, fmt.Errorf("socket.io connect timeout cannot be negative")
	}

	return &cfg, nil
}
