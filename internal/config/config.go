// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package config reads the optional TOML run configuration.
//
// A configuration file holds the same settings as the command-line flags.
// The CLI loads it first and lets explicitly set flags override it. Relative
// paths in the file are resolved against the file's own directory so that a
// project can carry its configuration next to its programs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable that points at a configuration file
// when --config is not given.
const EnvVar = "XFORMGO_CONFIG"

// File is the decoded configuration file.
type File struct {
	Program  string         `toml:"program"`
	Input    string         `toml:"input"`
	Output   string         `toml:"output"`
	Format   string         `toml:"format"`
	Template string         `toml:"template"`
	Log      LogConfig      `toml:"log"`
	SocketIO SocketIOConfig `toml:"socketio"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SocketIOConfig configures publishing results to a socket.io server. An
// empty URL disables it.
type SocketIOConfig struct {
	URL                string   `toml:"url"`
	Namespace          string   `toml:"namespace"`
	Event              string   `toml:"event"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	ConnectTimeout     Duration `toml:"connect_timeout"`
}

// Duration wraps time.Duration for TOML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads and decodes the configuration file at path. Unknown keys are
// rejected.
func Load(path string) (*File, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg File
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.resolvePaths(filepath.Dir(path))
	return &cfg, nil
}

func (c *File) resolvePaths(dir string) {
	for _, p := range []*string{&c.Program, &c.Input, &c.Output} {
		if *p == "" || *p == "-" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(dir, *p)
	}
}
