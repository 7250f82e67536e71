// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle (load, compile, read
// input, execute, write results), decoupled from any specific entrypoint
// like a CLI or server.
package app
