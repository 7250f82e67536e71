// Package cli turns command-line arguments and an optional TOML config file
// into an app.Config. Usage problems come back as *ExitError so that main can
// pick the exit code.
package cli
